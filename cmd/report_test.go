package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/masmgr/githar-go/internal/history"
	"github.com/masmgr/githar-go/internal/output"
)

func strPtr(s string) *string { return &s }

func rawCommit(sha, date, message string, parents int) history.RawCommit {
	return history.RawCommit{
		SHA:     sha,
		HTMLURL: "https://github.com/octocat/Hello-World/commit/" + sha,
		Commit: history.CommitDetail{
			Message: strPtr(message),
			Author:  history.Signature{Date: date},
		},
		Parents: make([]history.ParentRef, parents),
	}
}

// helloWorldPage is one API page, newest first: a merge on top of a normal commit.
func helloWorldPage() []history.RawCommit {
	return []history.RawCommit{
		rawCommit("7fd1a60", "2012-03-06T23:06:50Z", "Merge pull request #6 from Spaceghost/patch-1\n\nNew line at end of file.", 2),
		rawCommit("553c207", "2011-01-26T19:06:08Z", "Create README", 1),
	}
}

// isolateConfig keeps config discovery and environment overrides away from
// the developer's own settings.
func isolateConfig(t *testing.T) string {
	t.Helper()
	for _, key := range []string{"GITHAR_BASE_URL", "GITHAR_TOKEN", "GITHAR_FORMAT", "GITHAR_GITHUB_TOKEN", "GITHUB_TOKEN"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

var helloWorld = history.Identifier{Owner: "octocat", Name: "Hello-World"}

func targetsOf(ids ...history.Identifier) []Target {
	targets := make([]Target, len(ids))
	for i, id := range ids {
		targets[i] = Target{Repository: id, Label: id.String()}
	}
	return targets
}

func TestRunReport_TextEndToEnd(t *testing.T) {
	var buf bytes.Buffer
	fetcher := history.NewMockFetcher([][]history.RawCommit{helloWorldPage()}, nil)
	opts := ReportOptions{Format: output.FormatText}

	err := runReport(context.Background(), fetcher, targetsOf(helloWorld), opts, output.NewReportWriter(&buf), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "octocat/Hello-World\n\n\n\n2011-01-26\tCreate README\n"
	if buf.String() != want {
		t.Fatalf("report = %q, want %q", buf.String(), want)
	}
}

func TestRunReport_MarkdownWithFilters(t *testing.T) {
	var buf bytes.Buffer
	fetcher := history.NewMockFetcher([][]history.RawCommit{helloWorldPage()}, nil)
	opts := ReportOptions{
		Filters: history.Filters{Author: "octocat", Until: "2012-12-31"},
		Format:  output.FormatMarkdown,
	}

	err := runReport(context.Background(), fetcher, targetsOf(helloWorld), opts, output.NewReportWriter(&buf), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "# octocat/Hello-World\n\nauthor=octocat | until=2012-12-31\n\n" +
		"2011-01-26    [Create README](https://github.com/octocat/Hello-World/commit/553c207)\n"
	if buf.String() != want {
		t.Fatalf("report = %q, want %q", buf.String(), want)
	}
}

func TestRunReport_ArgumentOrder(t *testing.T) {
	var buf bytes.Buffer
	fetcher := history.NewMockFetcher([][]history.RawCommit{helloWorldPage()}, nil)
	ids := []history.Identifier{
		{Owner: "octocat", Name: "Spoon-Knife"},
		helloWorld,
	}

	err := runReport(context.Background(), fetcher, targetsOf(ids...), ReportOptions{Format: output.FormatText}, output.NewReportWriter(&buf), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fetcher.Calls) != 2 || fetcher.Calls[0] != ids[0] || fetcher.Calls[1] != ids[1] {
		t.Fatalf("fetch calls = %v, want %v", fetcher.Calls, ids)
	}
	first := strings.Index(buf.String(), "octocat/Spoon-Knife")
	second := strings.Index(buf.String(), "octocat/Hello-World")
	if first != 0 || second <= first {
		t.Fatalf("reports out of order:\n%s", buf.String())
	}
}

// failingFetcher serves canned pages until the repository named fail.
type failingFetcher struct {
	fail history.Identifier
	err  error
}

func (f *failingFetcher) Fetch(_ context.Context, q *history.Query) (*history.Query, error) {
	if q.Repository == f.fail {
		return nil, f.err
	}
	q.Commits = append(q.Commits, helloWorldPage()...)
	return q, nil
}

func TestRunReport_StopsAtFirstError(t *testing.T) {
	var buf bytes.Buffer
	errBoom := errors.New("boom")
	broken := history.Identifier{Owner: "octocat", Name: "broken"}
	fetcher := &failingFetcher{fail: broken, err: errBoom}
	ids := []history.Identifier{helloWorld, broken, {Owner: "octocat", Name: "never"}}

	err := runReport(context.Background(), fetcher, targetsOf(ids...), ReportOptions{Format: output.FormatText}, output.NewReportWriter(&buf), nil)
	if !errors.Is(err, errBoom) {
		t.Fatalf("error = %v, want wrapped %v", err, errBoom)
	}
	if !strings.Contains(err.Error(), "octocat/broken") {
		t.Fatalf("error %q does not name the repository", err)
	}
	if !strings.HasPrefix(buf.String(), "octocat/Hello-World") {
		t.Fatalf("first report missing: %q", buf.String())
	}
	if strings.Contains(buf.String(), "never") {
		t.Fatalf("repository after the failure was reported: %q", buf.String())
	}
}

func TestRunReport_StatusLine(t *testing.T) {
	var buf, status bytes.Buffer
	fetcher := history.NewMockFetcher([][]history.RawCommit{helloWorldPage()}, nil)

	err := runReport(context.Background(), fetcher, targetsOf(helloWorld), ReportOptions{Format: output.FormatText}, output.NewReportWriter(&buf), &status)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(status.String(), "octocat/Hello-World: 1 commits, 1 merges skipped") {
		t.Fatalf("status = %q", status.String())
	}
	if strings.Contains(buf.String(), "merges skipped") {
		t.Fatalf("status line leaked into the report: %q", buf.String())
	}
}

func newCommitsServer(t *testing.T, requests *[]*http.Request) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*requests = append(*requests, r)
		if r.URL.Path != "/repos/octocat/Hello-World/commits" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(helloWorldPage())
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestApp_ReportToStdout(t *testing.T) {
	isolateConfig(t)
	var requests []*http.Request
	srv := newCommitsServer(t, &requests)

	var stdout bytes.Buffer
	app := App()
	app.Writer = &stdout
	app.ErrWriter = io.Discard

	args := []string{"githar", "--api-url", srv.URL, "--author", "octocat", "--token", "secret", "octocat/Hello-World"}
	if err := app.Run(args); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(requests) != 1 {
		t.Fatalf("got %d requests, want 1", len(requests))
	}
	if got := requests[0].URL.Query().Get("author"); got != "octocat" {
		t.Fatalf("author param = %q, want %q", got, "octocat")
	}
	if requests[0].URL.Query().Has("since") {
		t.Fatal("empty since filter was sent")
	}
	if got := requests[0].Header.Get("Authorization"); got != "Bearer secret" {
		t.Fatalf("Authorization = %q, want bearer token", got)
	}

	want := "octocat/Hello-World\n\nauthor=octocat\n\n2011-01-26\tCreate README\n"
	if stdout.String() != want {
		t.Fatalf("stdout = %q, want %q", stdout.String(), want)
	}
}

func TestApp_ReportToFile(t *testing.T) {
	dir := isolateConfig(t)
	var requests []*http.Request
	srv := newCommitsServer(t, &requests)
	path := filepath.Join(dir, "history.md")

	var stdout bytes.Buffer
	app := App()
	app.Writer = &stdout
	app.ErrWriter = io.Discard

	args := []string{"githar", "--api-url", srv.URL, "--format", "markdown", "-o", path, "octocat/Hello-World"}
	if err := app.Run(args); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.HasPrefix(string(data), "# octocat/Hello-World\n\n\n\n2011-01-26    [Create README](") {
		t.Fatalf("report = %q", string(data))
	}
	if stdout.Len() != 0 {
		t.Fatalf("stdout = %q, want nothing", stdout.String())
	}
}

func TestApp_APIError(t *testing.T) {
	isolateConfig(t)
	var requests []*http.Request
	srv := newCommitsServer(t, &requests)

	app := App()
	app.Writer = io.Discard
	app.ErrWriter = io.Discard

	err := app.Run([]string{"githar", "--api-url", srv.URL, "octocat/missing"})
	if err == nil {
		t.Fatal("expected error for unknown repository")
	}
	if !strings.Contains(err.Error(), "404") {
		t.Fatalf("error = %v, want status 404", err)
	}
}

func TestApp_InvalidFormat(t *testing.T) {
	isolateConfig(t)

	app := App()
	app.Writer = io.Discard
	app.ErrWriter = io.Discard

	if err := app.Run([]string{"githar", "--format", "html", "octocat/Hello-World"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

// closeRecorder fails its Close with err.
type closeRecorder struct {
	err    error
	closed bool
}

func (c *closeRecorder) Close() error {
	c.closed = true
	return c.err
}

func TestCloseReport(t *testing.T) {
	errClose := errors.New("disk full")
	errEarlier := errors.New("fetch failed")

	t.Run("CloseFailureIsReturned", func(t *testing.T) {
		w := &closeRecorder{err: errClose}
		err := closeReport(w, nil)
		if !w.closed {
			t.Fatal("output was not closed")
		}
		if !errors.Is(err, errClose) {
			t.Fatalf("error = %v, want wrapped %v", err, errClose)
		}
	})

	t.Run("EarlierErrorWins", func(t *testing.T) {
		w := &closeRecorder{err: errClose}
		if err := closeReport(w, errEarlier); !errors.Is(err, errEarlier) {
			t.Fatalf("error = %v, want %v", err, errEarlier)
		}
		if !w.closed {
			t.Fatal("output was not closed")
		}
	})

	t.Run("CleanClose", func(t *testing.T) {
		if err := closeReport(&closeRecorder{}, nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}

func TestRunReport_HeadingKeepsArgument(t *testing.T) {
	var buf bytes.Buffer
	fetcher := history.NewMockFetcher([][]history.RawCommit{helloWorldPage()}, nil)
	targets := []Target{{Repository: helloWorld, Label: "octocat/Hello-World.git/"}}

	err := runReport(context.Background(), fetcher, targets, ReportOptions{Format: output.FormatText}, output.NewReportWriter(&buf), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fetcher.Calls[0] != helloWorld {
		t.Fatalf("fetched %v, want %v", fetcher.Calls[0], helloWorld)
	}
	if !strings.HasPrefix(buf.String(), "octocat/Hello-World.git/\n\n") {
		t.Fatalf("report = %q", buf.String())
	}
}

func TestApp_OptionsAfterRepository(t *testing.T) {
	isolateConfig(t)
	var requests []*http.Request
	srv := newCommitsServer(t, &requests)

	app := App()
	app.Writer = io.Discard
	app.ErrWriter = io.Discard

	err := app.Run([]string{"githar", "octocat/Hello-World", "--api-url=" + srv.URL, "--author=octocat"})
	if err == nil {
		t.Fatal("expected error for options after the repository")
	}
	if !strings.Contains(err.Error(), "options go before") {
		t.Fatalf("error = %v, want a hint about option order", err)
	}
	if len(requests) != 0 {
		t.Fatalf("sent %d requests, want none", len(requests))
	}
}

func TestApp_NormalizedRepositoryArgument(t *testing.T) {
	isolateConfig(t)
	var requests []*http.Request
	srv := newCommitsServer(t, &requests)

	var stdout bytes.Buffer
	app := App()
	app.Writer = &stdout
	app.ErrWriter = io.Discard

	if err := app.Run([]string{"githar", "--api-url", srv.URL, "octocat/Hello-World.git"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(requests) != 1 || requests[0].URL.Path != "/repos/octocat/Hello-World/commits" {
		t.Fatalf("requests = %v, want one to the normalized repository", requests)
	}
	if !strings.HasPrefix(stdout.String(), "octocat/Hello-World.git\n\n") {
		t.Fatalf("stdout = %q", stdout.String())
	}
}
