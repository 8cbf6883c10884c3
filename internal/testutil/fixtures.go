package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/fitstudio/fitstudio-server/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProfileBuilder creates test accounts with a builder pattern. Build
// registers the account with the identity stub and inserts the matching
// profile row, the same split the production registration flow produces.
type ProfileBuilder struct {
	email     string
	password  string
	firstName string
	lastName  string
	role      domain.Role
}

// NewProfileBuilder creates a new ProfileBuilder with default values
func NewProfileBuilder() *ProfileBuilder {
	return &ProfileBuilder{
		email:     fmt.Sprintf("test_%s@example.com", uuid.New().String()[:8]),
		password:  "testpassword123",
		firstName: "Test",
		lastName:  "Member",
		role:      domain.RoleUser,
	}
}

// WithEmail sets the account email
func (b *ProfileBuilder) WithEmail(email string) *ProfileBuilder {
	b.email = email
	return b
}

// WithPassword sets the account password
func (b *ProfileBuilder) WithPassword(password string) *ProfileBuilder {
	b.password = password
	return b
}

// WithName sets the display name
func (b *ProfileBuilder) WithName(first, last string) *ProfileBuilder {
	b.firstName = first
	b.lastName = last
	return b
}

// WithRole sets the account role
func (b *ProfileBuilder) WithRole(role domain.Role) *ProfileBuilder {
	b.role = role
	return b
}

// Build creates the identity record and profile row, returning the profile
// and the raw password.
func (b *ProfileBuilder) Build(t *testing.T, ts *TestServer) (*domain.Profile, string) {
	t.Helper()

	id := ts.Identity.AddUser(t, b.email, b.password, b.role.String())

	profile := &domain.Profile{
		ID:        id,
		Email:     b.email,
		FirstName: b.firstName,
		LastName:  b.lastName,
		Role:      b.role,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := ts.DB.DB.Create(profile).Error; err != nil {
		t.Fatalf("failed to create profile: %v", err)
	}

	return profile, b.password
}

// LoginResponse matches the API session response
type LoginResponse struct {
	Status      string          `json:"status"`
	User        *domain.Profile `json:"user"`
	AccessToken string          `json:"access_token"`
}

// BuildAndLogin creates the account and signs it in via the API, returning
// the profile, access token, and the cookies the server set.
func (b *ProfileBuilder) BuildAndLogin(t *testing.T, ts *TestServer) (*domain.Profile, string, []*http.Cookie) {
	t.Helper()

	profile, password := b.Build(t, ts)
	token, cookies := Login(t, ts, b.email, password, false)
	return profile, token, cookies
}

// Login signs in via the API and returns the access token and set cookies.
func Login(t *testing.T, ts *TestServer, email, password string, remember bool) (string, []*http.Cookie) {
	t.Helper()

	reqBody := map[string]interface{}{
		"email":      email,
		"password":   password,
		"rememberMe": remember,
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(ts.APIURL("/auth/login"), "application/json", bytes.NewBuffer(body))
	if err != nil {
		t.Fatalf("failed to log in: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected login status code: %d", resp.StatusCode)
	}

	var loginResp LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}

	return loginResp.AccessToken, resp.Cookies()
}

// ClassBuilder creates test classes with a builder pattern
type ClassBuilder struct {
	title        string
	category     domain.ClassCategory
	instructorID uuid.UUID
	startsAt     time.Time
	duration     int
	capacity     int
	videoAssetID *uuid.UUID
}

// NewClassBuilder creates a new ClassBuilder with default values
func NewClassBuilder() *ClassBuilder {
	return &ClassBuilder{
		title:    fmt.Sprintf("Test Class %s", uuid.New().String()[:8]),
		category: domain.CategoryYoga,
		startsAt: time.Now().Add(24 * time.Hour).Truncate(time.Second),
		duration: 60,
		capacity: 10,
	}
}

// WithTitle sets the class title
func (b *ClassBuilder) WithTitle(title string) *ClassBuilder {
	b.title = title
	return b
}

// WithCategory sets the class category
func (b *ClassBuilder) WithCategory(category domain.ClassCategory) *ClassBuilder {
	b.category = category
	return b
}

// WithInstructor sets the instructor
func (b *ClassBuilder) WithInstructor(instructor *domain.Profile) *ClassBuilder {
	b.instructorID = instructor.ID
	return b
}

// WithStartsAt sets the schedule slot
func (b *ClassBuilder) WithStartsAt(at time.Time) *ClassBuilder {
	b.startsAt = at
	return b
}

// WithCapacity sets the enrollment capacity
func (b *ClassBuilder) WithCapacity(capacity int) *ClassBuilder {
	b.capacity = capacity
	return b
}

// WithVideoAsset attaches an on-demand video asset
func (b *ClassBuilder) WithVideoAsset(assetID uuid.UUID) *ClassBuilder {
	b.videoAssetID = &assetID
	return b
}

// Build creates the class in the database
func (b *ClassBuilder) Build(t *testing.T, db *gorm.DB) *domain.Class {
	t.Helper()

	if b.instructorID == uuid.Nil {
		b.instructorID = uuid.New()
	}

	class := &domain.Class{
		ID:              uuid.New(),
		Title:           b.title,
		Category:        b.category,
		InstructorID:    b.instructorID,
		StartsAt:        b.startsAt,
		DurationMinutes: b.duration,
		Capacity:        b.capacity,
		VideoAssetID:    b.videoAssetID,
	}

	if err := db.Create(class).Error; err != nil {
		t.Fatalf("failed to create class: %v", err)
	}

	return class
}

// EnrollUser inserts an enrollment row directly
func EnrollUser(t *testing.T, db *gorm.DB, classID, userID uuid.UUID) *domain.Enrollment {
	t.Helper()

	enrollment := &domain.Enrollment{
		ID:      uuid.New(),
		ClassID: classID,
		UserID:  userID,
	}
	if err := db.Create(enrollment).Error; err != nil {
		t.Fatalf("failed to create enrollment: %v", err)
	}
	return enrollment
}

// CreateVideoAsset inserts a video asset row directly
func CreateVideoAsset(t *testing.T, db *gorm.DB, uploadID string, createdBy uuid.UUID) *domain.VideoAsset {
	t.Helper()

	asset := &domain.VideoAsset{
		ID:               uuid.New(),
		ProviderUploadID: uploadID,
		Status:           domain.VideoStatusWaiting,
		CreatedBy:        createdBy,
	}
	if err := db.Create(asset).Error; err != nil {
		t.Fatalf("failed to create video asset: %v", err)
	}
	return asset
}

// CreateAuthenticatedRequest creates an HTTP request with auth token
func CreateAuthenticatedRequest(t *testing.T, method, url string, body interface{}, token string) *http.Request {
	t.Helper()

	var bodyReader *bytes.Buffer
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	} else {
		bodyReader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, url, bodyReader)
	if err != nil {
		t.Fatalf("failed to create request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// DoRequest executes a request with a plain client and fails the test on
// transport errors.
func DoRequest(t *testing.T, req *http.Request) *http.Response {
	t.Helper()

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}
