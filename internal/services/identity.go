package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dating-clock-backend/internal/models"
)

// ErrStudentNotFound marks a student id the directory does not know
var ErrStudentNotFound = errors.New("student not found")

// IdentityClient resolves student ids against the external directory API
type IdentityClient struct {
	baseURL string
	client  *http.Client
}

// NewIdentityClient creates a directory client with a bounded timeout so a
// slow directory surfaces as a retryable error instead of hanging the UI
func NewIdentityClient(baseURL string, timeout time.Duration) *IdentityClient {
	return &IdentityClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type studentResponse struct {
	EmailAddress string `json:"email_address"`
	Department   string `json:"department"`
	PartnerID    string `json:"partner_id"`
}

// Resolve looks up a student id and returns the directory profile
func (c *IdentityClient) Resolve(ctx context.Context, studentID string) (*models.Student, error) {
	endpoint := fmt.Sprintf("%s/api/student?id=%s", c.baseURL, url.QueryEscape(studentID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build directory request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("directory request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("student %s: %w", studentID, ErrStudentNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directory returned status %d", resp.StatusCode)
	}

	var body studentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode directory response: %w", err)
	}
	if body.EmailAddress == "" || body.PartnerID == "" {
		return nil, fmt.Errorf("student %s: incomplete directory record: %w", studentID, ErrStudentNotFound)
	}

	department := body.Department
	if department == "" {
		department = "N/A"
	}

	return &models.Student{
		StudentID:  body.PartnerID,
		Name:       displayName(body.EmailAddress),
		Department: department,
	}, nil
}

// displayName derives a readable name from the directory email address.
// Only the first underscore separates first and last name; later ones are
// part of the surname, e.g. "juan_dela_cruz@..." -> "juan dela_cruz"
func displayName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return strings.Replace(local, "_", " ", 1)
}
