// Package session holds the mutable state of an interactive client
package session

import (
	"io"
	"os"

	"golf/internal/client/api"
)

// Session implements commands.Session
type Session struct {
	APIBaseURL      string
	Client          *api.Client
	Verbose         bool
	CurrentInstance string
	SubmitterName   string
	SubmitterEmail  string
	LastJob         string
	Output          io.Writer
}

// New creates a session against baseURL writing to stdout
func New(baseURL string) *Session {
	return &Session{
		APIBaseURL: baseURL,
		Client:     api.New(baseURL),
		Output:     os.Stdout,
	}
}

func (s *Session) GetAPIBaseURL() string { return s.APIBaseURL }

func (s *Session) SetAPIBaseURL(u string) {
	s.APIBaseURL = u
	s.Client.SetBaseURL(u)
}

func (s *Session) GetCurrentInstance() string     { return s.CurrentInstance }
func (s *Session) SetCurrentInstance(name string) { s.CurrentInstance = name }

func (s *Session) GetSubmitter() (name, email string) { return s.SubmitterName, s.SubmitterEmail }

func (s *Session) SetSubmitter(name, email string) {
	s.SubmitterName = name
	s.SubmitterEmail = email
}

func (s *Session) GetLastJob() string   { return s.LastJob }
func (s *Session) SetLastJob(id string) { s.LastJob = id }

func (s *Session) GetClient() *api.Client { return s.Client }
func (s *Session) IsVerbose() bool        { return s.Verbose }

func (s *Session) Out() io.Writer {
	if s.Output == nil {
		return os.Stdout
	}
	return s.Output
}
