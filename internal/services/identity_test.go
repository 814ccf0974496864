package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/student", r.URL.Path)
		assert.Equal(t, "2021-00123", r.URL.Query().Get("id"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"email_address":"juan_dela.cruz@dlsl.edu.ph","department":"CS","partner_id":"2021-00123"}`))
	}))
	defer srv.Close()

	client := NewIdentityClient(srv.URL, time.Second)
	student, err := client.Resolve(context.Background(), "2021-00123")
	require.NoError(t, err)

	assert.Equal(t, "2021-00123", student.StudentID)
	assert.Equal(t, "juan dela.cruz", student.Name)
	assert.Equal(t, "CS", student.Department)
}

func TestDisplayNameSplitsOnFirstUnderscoreOnly(t *testing.T) {
	cases := map[string]string{
		"juan_dela.cruz@dlsl.edu.ph": "juan dela.cruz",
		"juan_dela_cruz@dlsl.edu.ph": "juan dela_cruz",
		"maria@dlsl.edu.ph":          "maria",
	}
	for email, want := range cases {
		assert.Equal(t, want, displayName(email), email)
	}
}

func TestResolveDefaultsDepartment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"email_address":"maria@dlsl.edu.ph","partner_id":"2021-00456"}`))
	}))
	defer srv.Close()

	client := NewIdentityClient(srv.URL, time.Second)
	student, err := client.Resolve(context.Background(), "2021-00456")
	require.NoError(t, err)
	assert.Equal(t, "N/A", student.Department)
}

func TestResolveNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewIdentityClient(srv.URL, time.Second)
	_, err := client.Resolve(context.Background(), "9999-99999")
	assert.True(t, errors.Is(err, ErrStudentNotFound))
}

func TestResolveIncompleteRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"department":"CS"}`))
	}))
	defer srv.Close()

	client := NewIdentityClient(srv.URL, time.Second)
	_, err := client.Resolve(context.Background(), "2021-00123")
	assert.True(t, errors.Is(err, ErrStudentNotFound))
}

func TestResolveServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewIdentityClient(srv.URL, time.Second)
	_, err := client.Resolve(context.Background(), "2021-00123")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrStudentNotFound))
}

func TestResolveTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	client := NewIdentityClient(srv.URL, 50*time.Millisecond)
	start := time.Now()
	_, err := client.Resolve(context.Background(), "2021-00123")
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second, "timeout must be bounded")
}
