package service

import (
	"context"
	"log"
	"strconv"

	"github.com/meilisearch/meilisearch-go"

	"github.com/onboardhq/onboard/internal/model"
)

const collaboratorIndex = "collaborators"

// SearchIndexService mirrors the collaborator directory into a search index.
// The SQL store stays the source of truth; index sync is best-effort and the
// directory falls back to SQL filtering when the index is unreachable.
type SearchIndexService interface {
	IndexCollaborator(ctx context.Context, c *model.Collaborator) error
	DeleteCollaborator(ctx context.Context, id uint) error
	SearchCollaboratorIDs(ctx context.Context, query string) ([]uint, error)
}

type meiliSearchService struct {
	client meilisearch.ServiceManager
}

func NewMeiliSearchService(client meilisearch.ServiceManager) SearchIndexService {
	s := &meiliSearchService{client: client}
	s.initIndex()
	return s
}

func (s *meiliSearchService) initIndex() {
	searchable := []string{"full_name", "email"}
	if _, err := s.client.Index(collaboratorIndex).UpdateSearchableAttributes(&searchable); err != nil {
		// The index still works with defaults; worth a line, not a failure.
		log.Printf("failed to update searchable attributes: %v", err)
	}
}

type collaboratorDoc struct {
	ID       uint   `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

func (s *meiliSearchService) IndexCollaborator(ctx context.Context, c *model.Collaborator) error {
	doc := collaboratorDoc{
		ID:       c.ID,
		FullName: c.FullName,
		Email:    c.Email,
	}

	_, err := s.client.Index(collaboratorIndex).AddDocuments([]collaboratorDoc{doc}, strPtr("id"))
	return err
}

func (s *meiliSearchService) DeleteCollaborator(ctx context.Context, id uint) error {
	_, err := s.client.Index(collaboratorIndex).DeleteDocument(strconv.FormatUint(uint64(id), 10))
	return err
}

func (s *meiliSearchService) SearchCollaboratorIDs(ctx context.Context, query string) ([]uint, error) {
	resp, err := s.client.Index(collaboratorIndex).Search(query, &meilisearch.SearchRequest{
		Limit: 100,
	})
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		var doc collaboratorDoc
		if err := hit.Decode(&doc); err != nil {
			continue
		}
		ids = append(ids, doc.ID)
	}
	return ids, nil
}

func strPtr(s string) *string {
	return &s
}
