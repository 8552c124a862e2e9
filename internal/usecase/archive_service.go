package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/riskibarqy/match-center/internal/domain/rawdata"
)

// ArchiveService persists raw provider payloads for audit and replay. The
// hash is computed here so every write path stamps payloads the same way.
type ArchiveService struct {
	rawDataRepo rawdata.Repository
}

func NewArchiveService(rawDataRepo rawdata.Repository) *ArchiveService {
	return &ArchiveService{rawDataRepo: rawDataRepo}
}

func (s *ArchiveService) UpsertRawPayloads(ctx context.Context, source string, items []rawdata.Payload) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ArchiveService.UpsertRawPayloads")
	defer span.End()

	if s.rawDataRepo == nil || len(items) == 0 {
		return nil
	}

	source = strings.ToLower(strings.TrimSpace(source))
	if source == "" {
		source = "apifootball"
	}

	cleaned := make([]rawdata.Payload, 0, len(items))
	for _, item := range items {
		item.Source = source
		item.EntityType = strings.ToLower(strings.TrimSpace(item.EntityType))
		item.EntityKey = strings.TrimSpace(item.EntityKey)
		item.PayloadJSON = strings.TrimSpace(item.PayloadJSON)
		if item.EntityType == "" || item.EntityKey == "" || item.PayloadJSON == "" {
			return fmt.Errorf("%w: entity_type, entity_key and payload are required", ErrInvalidInput)
		}

		hash := sha256.Sum256([]byte(item.PayloadJSON))
		item.PayloadHash = hex.EncodeToString(hash[:])
		cleaned = append(cleaned, item)
	}

	if err := s.rawDataRepo.UpsertMany(ctx, cleaned); err != nil {
		return fmt.Errorf("upsert raw payloads: %w", err)
	}

	return nil
}
