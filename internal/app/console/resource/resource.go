// internal/app/console/resource/resource.go

// Package resource is the static registry of console resources.
//
// Every logical collection the admin console can show is declared here with
// the mutations it supports and the fields the console reads from its
// records (status, contact email, search, sort). Resources are never
// discovered at runtime.
package resource

import "slices"

// Name is the unique key of a resource, e.g. "bookings".
type Name string

const (
	Users                 Name = "users"
	Bookings              Name = "bookings"
	TripRequests          Name = "trip_requests"
	Destinations          Name = "destinations"
	Services              Name = "services"
	FAQs                  Name = "faqs"
	Blogs                 Name = "blogs"
	Reviews               Name = "reviews"
	ContactMessages       Name = "contact_messages"
	NewsletterSubscribers Name = "newsletter_subscribers"
	AuditLogs             Name = "audit_logs"
)

// Op is a mutation kind a resource may support.
type Op string

const (
	OpCreate     Op = "create"
	OpUpdate     Op = "update"
	OpDelete     Op = "delete"
	OpTransition Op = "transition"
)

// Spec describes one resource.
type Spec struct {
	Name       Name
	Label      string
	Collection string

	Ops []Op

	// StatusField is empty when the resource has no status lifecycle.
	StatusField  string
	StatusValues []string

	// ContactField names the email address used for compose-email.
	ContactField string

	SearchFields []string
	SortField    string

	// Editable lists the fields the inline editor may patch.
	Editable []string
}

// Supports reports whether op is allowed on the resource.
func (s Spec) Supports(op Op) bool {
	return slices.Contains(s.Ops, op)
}

// ValidStatus reports whether v is one of the declared status values.
func (s Spec) ValidStatus(v string) bool {
	return s.StatusField != "" && slices.Contains(s.StatusValues, v)
}

// CanEdit reports whether field may be patched inline.
func (s Spec) CanEdit(field string) bool {
	return slices.Contains(s.Editable, field)
}

var crud = []Op{OpCreate, OpUpdate, OpDelete}

var specs = []Spec{
	{
		Name: Users, Label: "Users", Collection: "users",
		Ops:          []Op{OpUpdate, OpDelete, OpTransition},
		StatusField:  "status",
		StatusValues: []string{"active", "disabled"},
		ContactField: "email",
		SearchFields: []string{"full_name", "email"},
		SortField:    "created_at",
		Editable:     []string{"full_name", "email", "phone", "role"},
	},
	{
		Name: Bookings, Label: "Bookings", Collection: "bookings",
		Ops:          []Op{OpUpdate, OpDelete, OpTransition},
		StatusField:  "status",
		StatusValues: []string{"pending", "confirmed", "cancelled", "completed"},
		ContactField: "email",
		SearchFields: []string{"full_name", "email"},
		SortField:    "created_at",
		Editable:     []string{"travelers", "total_price"},
	},
	{
		Name: TripRequests, Label: "Trip Requests", Collection: "trip_requests",
		Ops:          []Op{OpUpdate, OpDelete, OpTransition},
		StatusField:  "status",
		StatusValues: []string{"pending", "approved", "rejected", "completed"},
		ContactField: "email",
		SearchFields: []string{"full_name", "email", "destination"},
		SortField:    "created_at",
		Editable:     []string{"budget", "notes"},
	},
	{
		Name: Destinations, Label: "Destinations", Collection: "destinations",
		Ops:          crud,
		SearchFields: []string{"name", "country"},
		SortField:    "created_at",
		Editable:     []string{"name", "country", "description", "image_url", "price"},
	},
	{
		Name: Services, Label: "Services", Collection: "services",
		Ops:          crud,
		SearchFields: []string{"title", "description"},
		SortField:    "created_at",
		Editable:     []string{"title", "description", "icon"},
	},
	{
		Name: FAQs, Label: "FAQs", Collection: "faqs",
		Ops:          crud,
		SearchFields: []string{"question", "answer", "category"},
		SortField:    "created_at",
		Editable:     []string{"question", "answer", "category"},
	},
	{
		Name: Blogs, Label: "Blog Posts", Collection: "blogs",
		Ops:          append(slices.Clone(crud), OpTransition),
		StatusField:  "status",
		StatusValues: []string{"draft", "published"},
		SearchFields: []string{"title", "author", "slug"},
		SortField:    "created_at",
		Editable:     []string{"title", "slug", "author", "excerpt"},
	},
	{
		Name: Reviews, Label: "Reviews", Collection: "reviews",
		Ops:          append(slices.Clone(crud), OpTransition),
		StatusField:  "status",
		StatusValues: []string{"pending", "approved", "rejected"},
		ContactField: "email",
		SearchFields: []string{"name", "email", "comment"},
		SortField:    "created_at",
		Editable:     []string{"comment"},
	},
	{
		Name: ContactMessages, Label: "Contact Messages", Collection: "contact_messages",
		Ops:          []Op{OpDelete, OpTransition},
		StatusField:  "status",
		StatusValues: []string{"new", "read", "replied"},
		ContactField: "email",
		SearchFields: []string{"name", "email", "subject", "message"},
		SortField:    "created_at",
	},
	{
		Name: NewsletterSubscribers, Label: "Newsletter", Collection: "newsletter_subscribers",
		Ops:          []Op{OpDelete, OpTransition},
		StatusField:  "status",
		StatusValues: []string{"active", "unsubscribed"},
		ContactField: "email",
		SearchFields: []string{"email"},
		SortField:    "created_at",
	},
	{
		Name: AuditLogs, Label: "Audit Log", Collection: "audit_events",
		SearchFields: []string{"event_type", "category"},
		SortField:    "timestamp",
	},
}

var byName = func() map[Name]Spec {
	m := make(map[Name]Spec, len(specs))
	for _, s := range specs {
		m[s.Name] = s
	}
	return m
}()

// All returns every resource in display order.
func All() []Spec {
	return slices.Clone(specs)
}

// Names returns every resource name in display order.
func Names() []Name {
	out := make([]Name, len(specs))
	for i, s := range specs {
		out[i] = s.Name
	}
	return out
}

// Lookup returns the spec for name.
func Lookup(name Name) (Spec, bool) {
	s, ok := byName[name]
	return s, ok
}
