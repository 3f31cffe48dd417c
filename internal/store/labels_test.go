package store

import (
	"context"
	"testing"
	"time"
)

func TestLabels_CreateRenameDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	work, err := s.CreateLabel(ctx, " Work ", "")
	if err != nil {
		t.Fatalf("CreateLabel: %v", err)
	}
	if work.Name != "Work" || work.Color != DefaultLabelColors[0] || work.OrderIndex != 0 {
		t.Fatalf("unexpected label: %+v", work)
	}
	study, err := s.CreateLabel(ctx, "Study", "#112233")
	if err != nil {
		t.Fatalf("CreateLabel: %v", err)
	}
	if study.OrderIndex != 1 || study.Color != "#112233" {
		t.Fatalf("unexpected label: %+v", study)
	}

	name := "Deep work"
	renamed, err := s.UpdateLabel(ctx, work.ID, &name, nil)
	if err != nil {
		t.Fatalf("UpdateLabel: %v", err)
	}
	if renamed.Name != "Deep work" || renamed.Color != work.Color {
		t.Fatalf("expected rename only; got %+v", renamed)
	}

	sess, _ := s.CreateSession(ctx, time.Minute, &study.ID, time.Now())
	if err := s.DeleteLabel(ctx, study.ID); err != nil {
		t.Fatalf("DeleteLabel: %v", err)
	}
	got, _ := s.GetSession(ctx, sess.ID)
	if got.LabelID != nil {
		t.Fatalf("expected label detached from session; got %v", *got.LabelID)
	}

	labels, err := s.ListLabels(ctx)
	if err != nil {
		t.Fatalf("ListLabels: %v", err)
	}
	if len(labels) != 1 || labels[0].ID != work.ID {
		t.Fatalf("expected only the live label; got %+v", labels)
	}
	if err := s.DeleteLabel(ctx, study.ID); !IsNotFound(err) {
		t.Fatalf("expected not found deleting twice; got %v", err)
	}
}

func TestLabels_RejectEmptyName(t *testing.T) {
	t.Parallel()
	if _, err := newTestStore(t).CreateLabel(context.Background(), "  ", ""); err == nil {
		t.Fatalf("expected error for empty name")
	}
}

func TestSetSessionLabel(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)
	l, _ := s.CreateLabel(ctx, "Writing", "")
	sess, _ := s.CreateSession(ctx, time.Minute, nil, time.Now())

	if err := s.SetSessionLabel(ctx, sess.ID, &l.ID); err != nil {
		t.Fatalf("SetSessionLabel: %v", err)
	}
	res, err := s.SessionResults(ctx, sess.ID)
	if err != nil {
		t.Fatalf("SessionResults: %v", err)
	}
	if res.Label == nil || res.Label.Name != "Writing" {
		t.Fatalf("expected label on results; got %+v", res.Label)
	}

	missing := int64(999)
	if err := s.SetSessionLabel(ctx, sess.ID, &missing); !IsNotFound(err) {
		t.Fatalf("expected not found for unknown label; got %v", err)
	}
	if err := s.SetSessionLabel(ctx, sess.ID, nil); err != nil {
		t.Fatalf("SetSessionLabel(nil): %v", err)
	}
}
