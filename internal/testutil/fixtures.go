package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/wanderhub/travelhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

func (f *Fixtures) insert(ctx context.Context, coll string, doc any) {
	f.t.Helper()
	if _, err := f.db.Collection(coll).InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to create test %s: %v", coll, err)
	}
}

// CreateUser creates a user with the given role and active status.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Email:      email,
		Role:       role,
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	f.insert(ctx, "users", u)
	return u
}

// CreateAdmin creates an admin user.
func (f *Fixtures) CreateAdmin(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, "admin")
}

// CreateBooking creates a booking in the given status. created offsets the
// creation time so tests can control sort order.
func (f *Fixtures) CreateBooking(ctx context.Context, fullName, email, status string, created time.Duration) models.Booking {
	f.t.Helper()

	at := time.Now().UTC().Add(created)
	b := models.Booking{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		Email:      email,
		TravelDate: at.AddDate(0, 1, 0),
		Travelers:  2,
		TotalPrice: 1200,
		Status:     status,
		CreatedAt:  at,
		UpdatedAt:  at,
	}
	f.insert(ctx, "bookings", b)
	return b
}

// CreateSubscriber creates an active newsletter subscriber.
func (f *Fixtures) CreateSubscriber(ctx context.Context, email string) models.NewsletterSubscriber {
	f.t.Helper()

	now := time.Now().UTC()
	s := models.NewsletterSubscriber{
		ID:        primitive.NewObjectID(),
		Email:     email,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "newsletter_subscribers", s)
	return s
}

// CreateDestination creates a catalog destination.
func (f *Fixtures) CreateDestination(ctx context.Context, name, country string, price float64) models.Destination {
	f.t.Helper()

	now := time.Now().UTC()
	d := models.Destination{
		ID:          primitive.NewObjectID(),
		Name:        name,
		Country:     country,
		Description: "A place to visit.",
		Price:       price,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.insert(ctx, "destinations", d)
	return d
}

// CreateTripRequest creates a trip request in the given status.
func (f *Fixtures) CreateTripRequest(ctx context.Context, fullName, email, status string) models.TripRequest {
	f.t.Helper()

	now := time.Now().UTC()
	tr := models.TripRequest{
		ID:          primitive.NewObjectID(),
		FullName:    fullName,
		Email:       email,
		Destination: "Lisbon",
		StartDate:   now.AddDate(0, 2, 0),
		EndDate:     now.AddDate(0, 2, 7),
		Travelers:   2,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.insert(ctx, "trip_requests", tr)
	return tr
}

// CreateService creates a service card.
func (f *Fixtures) CreateService(ctx context.Context, title string) models.Service {
	f.t.Helper()

	now := time.Now().UTC()
	s := models.Service{
		ID:          primitive.NewObjectID(),
		Title:       title,
		Description: "What we offer.",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.insert(ctx, "services", s)
	return s
}

// CreateFAQ creates an FAQ entry.
func (f *Fixtures) CreateFAQ(ctx context.Context, question, answer string) models.FAQ {
	f.t.Helper()

	now := time.Now().UTC()
	q := models.FAQ{
		ID:        primitive.NewObjectID(),
		Question:  question,
		Answer:    answer,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "faqs", q)
	return q
}

// CreateBlog creates a blog post in the given status.
func (f *Fixtures) CreateBlog(ctx context.Context, title, slug, status string) models.Blog {
	f.t.Helper()

	now := time.Now().UTC()
	b := models.Blog{
		ID:        primitive.NewObjectID(),
		Title:     title,
		Slug:      slug,
		Author:    "Staff",
		Content:   "<p>Hello</p>",
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if status == "published" {
		b.PublishedAt = &now
	}
	f.insert(ctx, "blogs", b)
	return b
}

// CreateReview creates a pending review.
func (f *Fixtures) CreateReview(ctx context.Context, name, email string, rating int) models.Review {
	f.t.Helper()

	now := time.Now().UTC()
	r := models.Review{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Email:     email,
		Rating:    rating,
		Comment:   "Great trip.",
		Status:    "pending",
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "reviews", r)
	return r
}

// CreateContactMessage creates an unread contact message.
func (f *Fixtures) CreateContactMessage(ctx context.Context, name, email, subject string) models.ContactMessage {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.ContactMessage{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Email:     email,
		Subject:   subject,
		Message:   "Hi there.",
		Status:    "new",
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.insert(ctx, "contact_messages", m)
	return m
}
