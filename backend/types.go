package backend

import "encoding/json"

// Author is the optional author sub-record of a post.
type Author struct {
	Name  string `json:"name"`
	Bio   string `json:"bio,omitempty"`
	Image string `json:"image,omitempty"`
}

// Post is a blog post as served by the backend. Slug is the unique key.
type Post struct {
	Slug      string   `json:"slug"`
	Title     string   `json:"title"`
	Excerpt   string   `json:"excerpt"`
	Content   string   `json:"content"` // HTML
	Date      string   `json:"date"`
	CreatedAt string   `json:"createdAt,omitempty"`
	ReadTime  string   `json:"readTime,omitempty"`
	Category  string   `json:"category"`
	Tags      []string `json:"tags"`
	Image     string   `json:"image,omitempty"`
	Published bool     `json:"published"`
	Author    *Author  `json:"author,omitempty"`
}

// Project is a portfolio entry. ID is read from "_id", or "id" when the
// backend sends that instead.
type Project struct {
	ID           string   `json:"_id,omitempty"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Image        string   `json:"image,omitempty"`
	Tags         []string `json:"tags"`
	Category     string   `json:"category"`
	GitHub       string   `json:"github,omitempty"`
	Link         string   `json:"link,omitempty"`
	Featured     bool     `json:"featured"`
	IsCustomCode bool     `json:"isCustomCode"`
}

// Service is an offered service. ID follows the same "_id"/"id" rule as
// Project.
type Service struct {
	ID          string   `json:"_id,omitempty"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Icon        string   `json:"icon,omitempty"`
	Color       string   `json:"color,omitempty"`
	Features    []string `json:"features"`
	Category    string   `json:"category,omitempty"`
	Price       string   `json:"price,omitempty"`
	Active      bool     `json:"active"`
}

// Pagination describes a page of a list reply.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// PostList is the data of GET /blog.
type PostList struct {
	Posts      []Post      `json:"posts"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// ProjectList is the data of GET /projects.
type ProjectList struct {
	Projects   []Project   `json:"projects"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// ServiceList is the data of GET /services.
type ServiceList struct {
	Services   []Service   `json:"services"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// envelope is the { "data": ... } wrapper every read endpoint uses.
type envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

type postData struct {
	Post *Post `json:"post"`
}

// Lead is a contact-form submission.
type Lead struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
	Phone   string `json:"phone,omitempty"`
	Subject string `json:"subject,omitempty"`
}

// Visit is a page-view record.
type Visit struct {
	Page      string `json:"page"`
	Path      string `json:"path"`
	Referrer  string `json:"referrer,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
}

// TrackingEvent is a custom analytics event.
type TrackingEvent struct {
	EventName string         `json:"eventName"`
	Page      string         `json:"page"`
	Path      string         `json:"path"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	SessionID string         `json:"sessionId,omitempty"`
}

// UnmarshalJSON accepts "id" when "_id" is absent.
func (p *Project) UnmarshalJSON(b []byte) error {
	type plain Project
	var v struct {
		plain
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*p = Project(v.plain)
	if p.ID == "" {
		p.ID = v.AltID
	}
	return nil
}

// UnmarshalJSON accepts "id" when "_id" is absent.
func (s *Service) UnmarshalJSON(b []byte) error {
	type plain Service
	var v struct {
		plain
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*s = Service(v.plain)
	if s.ID == "" {
		s.ID = v.AltID
	}
	return nil
}
