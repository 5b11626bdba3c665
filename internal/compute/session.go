// Package compute is the client for the remote raster/vector compute
// service. All calls go through an explicit Session value so substitutes
// can be injected in tests; no ambient global session exists.
package compute

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"
	"time"
)

// fetchTimeout bounds every remote call. Raster downloads can be large,
// so the timeout is minutes-scale. Timed-out fetches are abandoned, not
// retried.
const fetchTimeout = 5 * time.Minute

// Session holds the connection parameters for the remote compute service.
type Session struct {
	BaseURL string
	Project string
	Client  *http.Client
}

// NewSession returns a session against the given endpoint and project.
func NewSession(baseURL, project string) *Session {
	return &Session{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Project: project,
		Client:  &http.Client{Timeout: fetchTimeout},
	}
}

// Status reports the outcome of an authentication check. It is a plain
// value rather than an error so callers can branch without unwrapping.
type Status struct {
	Authenticated bool
	Message       string
	Project       string
}

type assetRootsResponse struct {
	Roots []struct {
		ID string `json:"id"`
	} `json:"roots"`
}

// AuthStatus verifies the session can reach the service and resolves the
// authenticated project. Failures are reported in the returned Status,
// never raised.
func (s *Session) AuthStatus(ctx context.Context) Status {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/v1/projects/%s/assetRoots", s.BaseURL, s.Project), nil)
	if err != nil {
		return Status{Message: fmt.Sprintf("Authentication error: %v", err)}
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return Status{Message: fmt.Sprintf("Authentication error: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := ioutil.ReadAll(resp.Body)
		return Status{Message: fmt.Sprintf("Authentication failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))}
	}

	var roots assetRootsResponse
	if err := json.NewDecoder(resp.Body).Decode(&roots); err != nil || len(roots.Roots) == 0 {
		return Status{
			Authenticated: true,
			Message:       "Authenticated but could not retrieve project info",
		}
	}

	project := roots.Roots[0].ID
	if strings.HasPrefix(project, "projects/") {
		project = strings.SplitN(project, "/", 2)[1]
	}

	return Status{
		Authenticated: true,
		Message:       "Successfully authenticated to compute service",
		Project:       project,
	}
}

// EnsureAssetFolder creates a remote asset folder if absent and reports
// whether it was created. The check-then-create sequence tolerates a
// concurrent creator winning the race: an "already exists" answer from
// the create call counts as the folder existing.
func (s *Session) EnsureAssetFolder(ctx context.Context, folderPath string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/v1/%s", s.BaseURL, folderPath), nil)
	if err != nil {
		return false, err
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return false, fmt.Errorf("Error checking asset folder %s: %v", folderPath, err)
	}
	resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return false, nil
	}
	if resp.StatusCode != http.StatusNotFound {
		return false, fmt.Errorf("Error checking asset folder %s: %s", folderPath, resp.Status)
	}

	body, err := json.Marshal(map[string]string{"id": folderPath, "type": "FOLDER"})
	if err != nil {
		return false, err
	}
	createReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/v1/projects/%s/assets", s.BaseURL, s.Project), bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	createReq.Header.Set("Content-Type", "application/json")

	createResp, err := s.Client.Do(createReq)
	if err != nil {
		return false, fmt.Errorf("Error creating asset folder %s: %v", folderPath, err)
	}
	defer createResp.Body.Close()

	switch createResp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		return true, nil
	case http.StatusConflict:
		// Lost the race to a concurrent creator.
		return false, nil
	default:
		msg, _ := ioutil.ReadAll(createResp.Body)
		return false, fmt.Errorf("Error creating asset folder %s: %s: %s", folderPath, createResp.Status, strings.TrimSpace(string(msg)))
	}
}

// postJSON issues a POST with a JSON body and returns the raw response
// bytes, translating non-200 answers into errors.
func (s *Session) postJSON(ctx context.Context, url string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("Error reading response from %s: %v", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %s: %s", url, resp.Status, strings.TrimSpace(string(data)))
	}

	return data, nil
}
