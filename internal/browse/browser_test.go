package browse

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/handiism/camsync/internal/model"
)

// fakeService serves canned pages per container and records every
// Browse call it receives.
type fakeService struct {
	pages map[string][]Page
	calls []browseCall
	err   error
}

type browseCall struct {
	objectID string
	offset   uint32
}

func (s *fakeService) Browse(ctx context.Context, objectID string, startingIndex, requestedCount uint32) (Page, error) {
	s.calls = append(s.calls, browseCall{objectID: objectID, offset: startingIndex})
	if s.err != nil {
		return Page{}, s.err
	}

	queue := s.pages[objectID]
	if len(queue) == 0 {
		return Page{}, fmt.Errorf("no more pages for %s", objectID)
	}
	page := queue[0]
	s.pages[objectID] = queue[1:]
	return page, nil
}

func image(id, title string) model.MediaItem {
	return model.MediaItem{ID: id, Title: title, Class: "object.item.imageItem.photo"}
}

func container(id, title string) model.MediaItem {
	return model.MediaItem{ID: id, Title: title, Class: "object.container"}
}

func collect(t *testing.T, svc Service, root string) []string {
	t.Helper()
	var titles []string
	err := NewWalker(svc).Walk(context.Background(), root, func(item model.MediaItem) error {
		titles = append(titles, item.Title)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() error: %v", err)
	}
	return titles
}

func TestWalk_PaginationOffsets(t *testing.T) {
	// 5 children split into pages of 2, 2, 1: exactly three calls at
	// offsets 0, 2, 4, each item yielded once.
	svc := &fakeService{pages: map[string][]Page{
		"0": {
			{Items: []model.MediaItem{image("1", "A"), image("2", "B")}, NumberReturned: 2, TotalMatches: 5},
			{Items: []model.MediaItem{image("3", "C"), image("4", "D")}, NumberReturned: 2, TotalMatches: 5},
			{Items: []model.MediaItem{image("5", "E")}, NumberReturned: 1, TotalMatches: 5},
		},
	}}

	titles := collect(t, svc, "0")

	if len(svc.calls) != 3 {
		t.Fatalf("Browse called %d times, want 3", len(svc.calls))
	}
	wantOffsets := []uint32{0, 2, 4}
	for i, call := range svc.calls {
		if call.objectID != "0" || call.offset != wantOffsets[i] {
			t.Errorf("call %d = %+v, want container 0 offset %d", i, call, wantOffsets[i])
		}
	}

	want := []string{"A", "B", "C", "D", "E"}
	if len(titles) != len(want) {
		t.Fatalf("yielded %v, want %v", titles, want)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Fatalf("yielded %v, want %v", titles, want)
		}
	}
}

func TestWalk_DepthFirstIntoContainers(t *testing.T) {
	// Root lists image A, container sub, image D. The container's
	// children must be yielded before D.
	svc := &fakeService{pages: map[string][]Page{
		"0": {
			{Items: []model.MediaItem{image("a", "A"), container("sub", "DCIM"), image("d", "D")},
				NumberReturned: 3, TotalMatches: 3},
		},
		"sub": {
			{Items: []model.MediaItem{image("b", "B"), image("c", "C")}, NumberReturned: 2, TotalMatches: 2},
		},
	}}

	titles := collect(t, svc, "0")

	want := []string{"A", "B", "C", "D"}
	if len(titles) != len(want) {
		t.Fatalf("yielded %v, want %v", titles, want)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Fatalf("yielded %v, want %v", titles, want)
		}
	}
}

func TestWalk_IgnoresOtherClasses(t *testing.T) {
	video := model.MediaItem{ID: "v", Title: "MOV_0001.MP4", Class: "object.item.videoItem"}
	svc := &fakeService{pages: map[string][]Page{
		"0": {{Items: []model.MediaItem{video, image("a", "A")}, NumberReturned: 2, TotalMatches: 2}},
	}}

	titles := collect(t, svc, "0")
	if len(titles) != 1 || titles[0] != "A" {
		t.Errorf("yielded %v, want only the image item", titles)
	}
}

func TestWalk_EmptyContainer(t *testing.T) {
	svc := &fakeService{pages: map[string][]Page{
		"0": {{NumberReturned: 0, TotalMatches: 0}},
	}}

	titles := collect(t, svc, "0")
	if len(titles) != 0 {
		t.Errorf("yielded %v from empty container", titles)
	}
	if len(svc.calls) != 1 {
		t.Errorf("Browse called %d times, want 1", len(svc.calls))
	}
}

func TestWalk_BrowseErrorIsFatal(t *testing.T) {
	svc := &fakeService{err: errors.New("boom")}

	err := NewWalker(svc).Walk(context.Background(), "0", func(model.MediaItem) error {
		t.Fatal("no item should be yielded")
		return nil
	})
	if !errors.Is(err, ErrBrowseFailed) {
		t.Errorf("Walk() error = %v, want ErrBrowseFailed", err)
	}
}

func TestWalk_ZeroProgressPageIsFatal(t *testing.T) {
	// A device that claims 5 children but returns an empty page would
	// loop forever if trusted.
	svc := &fakeService{pages: map[string][]Page{
		"0": {{NumberReturned: 0, TotalMatches: 5}},
	}}

	err := NewWalker(svc).Walk(context.Background(), "0", func(model.MediaItem) error { return nil })
	if !errors.Is(err, ErrBrowseFailed) {
		t.Errorf("Walk() error = %v, want ErrBrowseFailed", err)
	}
}

func TestWalk_GrowingTotalIsBounded(t *testing.T) {
	// The reported total grows faster than pages are fetched; the page
	// bound must cut the traversal off with an error.
	svc := &fakeService{pages: map[string][]Page{}}
	var pages []Page
	for i := 0; i < 100; i++ {
		pages = append(pages, Page{
			Items:          []model.MediaItem{image(fmt.Sprintf("i%d", i), fmt.Sprintf("I%d", i))},
			NumberReturned: 1,
			TotalMatches:   uint32(2 + i),
		})
	}
	svc.pages["0"] = pages

	err := NewWalker(svc).Walk(context.Background(), "0", func(model.MediaItem) error { return nil })
	if !errors.Is(err, ErrBrowseFailed) {
		t.Errorf("Walk() error = %v, want ErrBrowseFailed", err)
	}
	if len(svc.calls) >= 100 {
		t.Errorf("Browse called %d times, want the page bound to stop it earlier", len(svc.calls))
	}
}

func TestWalk_CallbackErrorStopsTraversal(t *testing.T) {
	svc := &fakeService{pages: map[string][]Page{
		"0": {{Items: []model.MediaItem{image("a", "A"), image("b", "B")}, NumberReturned: 2, TotalMatches: 2}},
	}}

	sentinel := errors.New("stop")
	var seen int
	err := NewWalker(svc).Walk(context.Background(), "0", func(model.MediaItem) error {
		seen++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Errorf("Walk() error = %v, want the callback's error", err)
	}
	if seen != 1 {
		t.Errorf("callback ran %d times after erroring, want 1", seen)
	}
}

func TestWalk_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := &fakeService{pages: map[string][]Page{
		"0": {{Items: []model.MediaItem{image("a", "A")}, NumberReturned: 1, TotalMatches: 1}},
	}}

	err := NewWalker(svc).Walk(ctx, "0", func(model.MediaItem) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Walk() error = %v, want context.Canceled", err)
	}
}
