package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/riskibarqy/match-center/internal/domain/rawdata"
)

type capturingRawDataRepo struct {
	items []rawdata.Payload
}

func (r *capturingRawDataRepo) UpsertMany(_ context.Context, items []rawdata.Payload) error {
	r.items = append(r.items, items...)
	return nil
}

func TestArchiveService_UpsertRawPayloads_StampsHash(t *testing.T) {
	t.Parallel()

	repo := &capturingRawDataRepo{}
	svc := NewArchiveService(repo)

	payload := `{"fixture":{"id":1035045}}`
	err := svc.UpsertRawPayloads(context.Background(), "APIFootball", []rawdata.Payload{
		{EntityType: "Fixture", EntityKey: " fixture:1035045 ", MatchID: 1035045, PayloadJSON: payload},
	})
	if err != nil {
		t.Fatalf("UpsertRawPayloads error: %v", err)
	}
	if len(repo.items) != 1 {
		t.Fatalf("expected 1 stored payload, got=%d", len(repo.items))
	}

	stored := repo.items[0]
	if stored.Source != "apifootball" {
		t.Fatalf("unexpected source: %q", stored.Source)
	}
	if stored.EntityType != "fixture" || stored.EntityKey != "fixture:1035045" {
		t.Fatalf("expected normalized identity, got type=%q key=%q", stored.EntityType, stored.EntityKey)
	}

	sum := sha256.Sum256([]byte(payload))
	if stored.PayloadHash != hex.EncodeToString(sum[:]) {
		t.Fatalf("unexpected payload hash: %q", stored.PayloadHash)
	}
}

func TestArchiveService_UpsertRawPayloads_RejectsIncompleteItems(t *testing.T) {
	t.Parallel()

	svc := NewArchiveService(&capturingRawDataRepo{})

	err := svc.UpsertRawPayloads(context.Background(), "apifootball", []rawdata.Payload{
		{EntityType: "fixture", PayloadJSON: "{}"},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got=%v", err)
	}
}

func TestArchiveService_UpsertRawPayloads_NoRepoIsNoop(t *testing.T) {
	t.Parallel()

	svc := NewArchiveService(nil)

	err := svc.UpsertRawPayloads(context.Background(), "apifootball", []rawdata.Payload{
		{EntityType: "fixture", EntityKey: "fixture:1", PayloadJSON: "{}"},
	})
	if err != nil {
		t.Fatalf("expected nil error without a repository, got=%v", err)
	}
}
