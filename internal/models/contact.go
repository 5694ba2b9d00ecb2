// internal/models/contact.go
package models

// Contact is an alert recipient. A contact with station StationAll receives
// alerts for every site.
type Contact struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Mobile   string `json:"mobile"` // raw user-entered number
	Station  string `json:"station"`
	IsActive bool   `json:"isActive"`
}

// Template is a message template with {placeholder} tokens in its body.
type Template struct {
	ID        string   `json:"id"`
	Type      string   `json:"type"`
	Body      string   `json:"body"`
	Variables []string `json:"variables"` // declared placeholder names; unused ones are permitted
}
