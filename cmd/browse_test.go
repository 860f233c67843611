package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rubiojr/cinegrid/pkg/catalog"
)

func newTestBrowser(t *testing.T) (*browser, *bytes.Buffer, *fakeTMDB) {
	t.Helper()
	a, upstream := newTestApp(t)
	var out bytes.Buffer
	return newBrowser(a, &out), &out, upstream
}

// run executes one command and returns what it printed.
func run(t *testing.T, b *browser, out *bytes.Buffer, input string) string {
	t.Helper()
	out.Reset()
	if quit := b.exec(context.Background(), input); quit {
		t.Fatalf("%q ended the session", input)
	}
	return out.String()
}

func TestBrowsePaging(t *testing.T) {
	b, out, _ := newTestBrowser(t)

	b.load(context.Background())
	first := out.String()
	if !strings.Contains(first, "Trending Now") || !strings.Contains(first, "Title 100") {
		t.Fatalf("unexpected first page:\n%s", first)
	}

	second := run(t, b, out, "")
	if !strings.Contains(second, "Title 200") || !strings.Contains(second, " 13\n") {
		t.Fatalf("expected page 2 numbered from 13:\n%s", second)
	}
	if strings.Contains(second, "Trending Now") {
		t.Fatal("later pages should not repeat the heading")
	}

	third := run(t, b, out, "more")
	if !strings.Contains(third, "No titles found.") || !strings.Contains(third, "24 titles, end of list") {
		t.Fatalf("expected the end of the list:\n%s", third)
	}

	if got := run(t, b, out, "more"); !strings.Contains(got, "No more titles.") {
		t.Fatalf("expected no more titles, got:\n%s", got)
	}
	if st := b.ctl.Snapshot(); len(st.Items) != 24 || st.HasMore {
		t.Fatalf("unexpected state %+v", st)
	}
}

func TestBrowseSearchAndShow(t *testing.T) {
	b, out, _ := newTestBrowser(t)

	got := run(t, b, out, "search the matrix")
	if !strings.Contains(got, "1 TITLE FOUND") || !strings.Contains(got, "The Matrix") {
		t.Fatalf("unexpected search output:\n%s", got)
	}
	if got := run(t, b, out, "more"); !strings.Contains(got, "No more titles.") {
		t.Fatal("search results are a single page")
	}

	got = run(t, b, out, "show 1")
	if !strings.Contains(got, "NETFLIX") || !strings.Contains(got, "youtube.com/watch?v=abc") {
		t.Fatalf("unexpected detail output:\n%s", got)
	}

	if got := run(t, b, out, "show 7"); !strings.Contains(got, "between 1 and 1") {
		t.Fatalf("expected a range hint, got:\n%s", got)
	}
}

func TestBrowseFilters(t *testing.T) {
	b, out, _ := newTestBrowser(t)
	b.load(context.Background())

	got := run(t, b, out, "type movie")
	if !strings.Contains(got, "Popular Movies") || !strings.Contains(got, "Could not load titles right now.") {
		t.Fatalf("unexpected filter output:\n%s", got)
	}
	if got := run(t, b, out, "type movie"); !strings.Contains(got, "Already showing") {
		t.Fatalf("expected no reload, got:\n%s", got)
	}
	if got := run(t, b, out, "type person"); !strings.Contains(got, "person") {
		t.Fatalf("expected a filter error, got:\n%s", got)
	}

	if got := run(t, b, out, "genre horror"); !strings.Contains(got, "unknown genre") {
		t.Fatalf("expected unknown genre, got:\n%s", got)
	}
	run(t, b, out, "genre action")
	if st := b.ctl.Snapshot(); st.Genre != 28 || st.Filter != catalog.FilterMovie {
		t.Fatalf("expected movie/28, got %+v", st)
	}

	got = run(t, b, out, "reset")
	if !strings.Contains(got, "Trending Now") {
		t.Fatalf("expected trending after reset:\n%s", got)
	}
}

func TestBrowseFavorites(t *testing.T) {
	b, out, _ := newTestBrowser(t)
	run(t, b, out, "search matrix")

	if got := run(t, b, out, "fav 1"); !strings.Contains(got, "--user") {
		t.Fatalf("expected a hint about --user, got:\n%s", got)
	}

	sess, err := b.app.auth.SignUp(context.Background(), "neo@matrix.io", "redpill", "")
	if err != nil {
		t.Fatal(err)
	}
	b.userID = sess.User.ID

	if got := run(t, b, out, "fav 1"); !strings.Contains(got, "saved The Matrix") {
		t.Fatalf("unexpected output:\n%s", got)
	}
	key := catalog.Key{Kind: catalog.KindMovie, ID: 603}
	if fav, _ := b.app.favorites.IsFavorite(context.Background(), sess.User.ID, key); !fav {
		t.Fatal("expected the title to be saved")
	}
	if got := run(t, b, out, "fav 1"); !strings.Contains(got, "removed The Matrix") {
		t.Fatalf("unexpected output:\n%s", got)
	}
}

func TestBrowseCommands(t *testing.T) {
	b, out, _ := newTestBrowser(t)

	if got := run(t, b, out, "frobnicate"); !strings.Contains(got, "unknown command") {
		t.Fatalf("unexpected output:\n%s", got)
	}
	if got := run(t, b, out, "help"); !strings.Contains(got, "Commands:") {
		t.Fatalf("unexpected output:\n%s", got)
	}
	if got := run(t, b, out, "genres"); !strings.Contains(got, "Action") {
		t.Fatalf("unexpected output:\n%s", got)
	}
	if !b.exec(context.Background(), "quit") {
		t.Fatal("quit should end the session")
	}
}
