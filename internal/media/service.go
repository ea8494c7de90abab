package media

import (
	"context"
	"time"

	"github.com/seekkrr/creator-portal/internal/db"

	"github.com/google/uuid"
)

// Asset is an image already uploaded to the asset host by the client. The
// portal only records the reference; upload itself happens elsewhere.
type Asset struct {
	PublicID     string `json:"public_id"`
	SecureURL    string `json:"secure_url"`
	Format       string `json:"format,omitempty"`
	ResourceType string `json:"resource_type,omitempty"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
}

type AssetRecord struct {
	ID        string    `json:"id"`
	CreatorID string    `json:"creator_id"`
	Asset     Asset     `json:"asset"`
	CreatedAt time.Time `json:"created_at"`
}

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) RegisterAsset(ctx context.Context, creatorID string, a Asset) (AssetRecord, error) {
	rec := AssetRecord{
		ID:        uuid.NewString(),
		CreatorID: creatorID,
		Asset:     a,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO media_assets (id, creator_id, public_id, secure_url, format, resource_type, width, height)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at
	`, rec.ID, rec.CreatorID, a.PublicID, a.SecureURL, a.Format, a.ResourceType, a.Width, a.Height)
	if err := row.Scan(&rec.CreatedAt); err != nil {
		return AssetRecord{}, err
	}
	return rec, nil
}

func (s *Service) Assets(ctx context.Context, creatorID string) ([]AssetRecord, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, creator_id, public_id, secure_url, format, resource_type, width, height, created_at
		FROM media_assets WHERE creator_id=$1
		ORDER BY created_at DESC
	`, creatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []AssetRecord
	for rows.Next() {
		var rec AssetRecord
		if err := rows.Scan(&rec.ID, &rec.CreatorID, &rec.Asset.PublicID, &rec.Asset.SecureURL,
			&rec.Asset.Format, &rec.Asset.ResourceType, &rec.Asset.Width, &rec.Asset.Height, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *Service) DeleteAsset(ctx context.Context, creatorID, id string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM media_assets WHERE id=$1 AND creator_id=$2`, id, creatorID)
	return err
}
