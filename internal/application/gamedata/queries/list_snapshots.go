package queries

import (
	"context"
	"fmt"

	"github.com/mickdekkers/skyrim-alchemy-go/internal/application/mediator"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/gamedata"
	"github.com/mickdekkers/skyrim-alchemy-go/internal/domain/shared"
)

// ListSnapshotsQuery lists the snapshots saved in the database, newest first
type ListSnapshotsQuery struct {
	// Limit caps the number of results; 0 means all
	Limit int
}

// ListSnapshotsResponse contains the stored snapshots
type ListSnapshotsResponse struct {
	Snapshots []*gamedata.SnapshotInfo
}

// ListSnapshotsHandler handles the list snapshots query
type ListSnapshotsHandler struct {
	repo gamedata.SnapshotRepository
}

// NewListSnapshotsHandler creates a new list snapshots handler
func NewListSnapshotsHandler(repo gamedata.SnapshotRepository) *ListSnapshotsHandler {
	return &ListSnapshotsHandler{repo: repo}
}

// Handle executes the list snapshots query
func (h *ListSnapshotsHandler) Handle(ctx context.Context, request mediator.Request) (mediator.Response, error) {
	query, ok := request.(*ListSnapshotsQuery)
	if !ok {
		return nil, fmt.Errorf("invalid request type")
	}
	if query.Limit < 0 {
		return nil, shared.NewValidationError("limit", "must not be negative")
	}

	snapshots, err := h.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	if query.Limit > 0 && len(snapshots) > query.Limit {
		snapshots = snapshots[:query.Limit]
	}
	return &ListSnapshotsResponse{Snapshots: snapshots}, nil
}
