package quest

import (
	"context"
	"encoding/json"

	"github.com/seekkrr/creator-portal/internal/db"

	"github.com/google/uuid"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) CreateQuest(ctx context.Context, createdBy string, p Payload) (CreateResponse, error) {
	metaID := uuid.NewString()
	_, err := s.db.Exec(ctx, `
		INSERT INTO quest_metadata (id, title, description, theme, difficulty, duration_minutes)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, metaID, p.Metadata.Title, p.Metadata.Description, p.Metadata.Theme, p.Metadata.Difficulty, p.Metadata.DurationMinutes)
	if err != nil {
		return CreateResponse{}, err
	}

	waypointsJSON, err := json.Marshal(p.Location.RouteWaypoints)
	if err != nil {
		return CreateResponse{}, err
	}
	locID := uuid.NewString()
	_, err = s.db.Exec(ctx, `
		INSERT INTO quest_locations (id, region, start_location, end_location, route_waypoints, zoom_level, map_style, distance_km)
		VALUES ($1,$2,
			ST_SetSRID(ST_MakePoint($3,$4), 4326)::geography,
			ST_SetSRID(ST_MakePoint($5,$6), 4326)::geography,
			$7,$8,$9,$10)
	`, locID, p.Location.Region,
		p.Location.StartLocation.Coordinates[0], p.Location.StartLocation.Coordinates[1],
		p.Location.EndLocation.Coordinates[0], p.Location.EndLocation.Coordinates[1],
		waypointsJSON, p.Location.MapData.ZoomLevel, p.Location.MapData.MapStyle, p.Location.DistanceKm)
	if err != nil {
		return CreateResponse{}, err
	}

	assetsJSON, err := json.Marshal(p.Media.CloudinaryAssets)
	if err != nil {
		return CreateResponse{}, err
	}
	mediaID := uuid.NewString()
	_, err = s.db.Exec(ctx, `
		INSERT INTO quest_media (id, cloudinary_assets, source_url)
		VALUES ($1,$2,$3)
	`, mediaID, assetsJSON, p.Media.SourceURL)
	if err != nil {
		return CreateResponse{}, err
	}

	questID := uuid.NewString()
	_, err = s.db.Exec(ctx, `
		INSERT INTO quests (id, metadata_id, location_id, media_id, created_by, status, booking_enabled)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, questID, metaID, locID, mediaID, createdBy, p.Status, p.BookingEnabled)
	if err != nil {
		return CreateResponse{}, err
	}

	stepIDs := make([]string, 0, len(p.Steps))
	for i, step := range p.Steps {
		stepID := uuid.NewString()
		_, err = s.db.Exec(ctx, `
			INSERT INTO quest_steps (id, quest_id, step_order, title, description)
			VALUES ($1,$2,$3,$4,$5)
		`, stepID, questID, i+1, step.Title, step.Description)
		if err != nil {
			return CreateResponse{}, err
		}
		stepIDs = append(stepIDs, stepID)
	}

	return CreateResponse{QuestID: questID, StepIDs: stepIDs}, nil
}

func (s *Service) GetQuest(ctx context.Context, id string) (QuestDetails, error) {
	row := s.db.QueryRow(ctx, `
		SELECT q.id, q.status, q.booking_enabled, q.created_by, q.created_at,
		       m.title, m.description, m.theme, m.difficulty, m.duration_minutes,
		       l.region,
		       ST_X(l.start_location::geometry), ST_Y(l.start_location::geometry),
		       ST_X(l.end_location::geometry), ST_Y(l.end_location::geometry),
		       l.route_waypoints, l.zoom_level, l.map_style, l.distance_km,
		       md.cloudinary_assets, md.source_url
		FROM quests q
		JOIN quest_metadata m ON m.id = q.metadata_id
		JOIN quest_locations l ON l.id = q.location_id
		JOIN quest_media md ON md.id = q.media_id
		WHERE q.id = $1
	`, id)

	var details QuestDetails
	var startLng, startLat, endLng, endLat float64
	var waypointsJSON, assetsJSON []byte
	if err := row.Scan(
		&details.Quest.ID, &details.Quest.Status, &details.Quest.BookingEnabled,
		&details.Quest.CreatedBy, &details.Quest.CreatedAt,
		&details.Metadata.Title, &details.Metadata.Description, &details.Metadata.Theme,
		&details.Metadata.Difficulty, &details.Metadata.DurationMinutes,
		&details.Location.Region,
		&startLng, &startLat, &endLng, &endLat,
		&waypointsJSON, &details.Location.MapData.ZoomLevel, &details.Location.MapData.MapStyle,
		&details.Location.DistanceKm,
		&assetsJSON, &details.Media.SourceURL,
	); err != nil {
		return QuestDetails{}, err
	}

	details.Quest.Title = details.Metadata.Title
	details.Quest.Difficulty = details.Metadata.Difficulty
	details.Quest.Theme = details.Metadata.Theme
	details.Quest.Region = details.Location.Region
	details.Location.StartLocation = GeoPoint{Type: "Point", Coordinates: [2]float64{startLng, startLat}}
	details.Location.EndLocation = GeoPoint{Type: "Point", Coordinates: [2]float64{endLng, endLat}}
	if err := json.Unmarshal(waypointsJSON, &details.Location.RouteWaypoints); err != nil {
		return QuestDetails{}, err
	}
	if err := json.Unmarshal(assetsJSON, &details.Media.CloudinaryAssets); err != nil {
		return QuestDetails{}, err
	}

	steps, err := s.questSteps(ctx, id)
	if err != nil {
		return QuestDetails{}, err
	}
	details.Steps = steps
	return details, nil
}

func (s *Service) questSteps(ctx context.Context, questID string) ([]Step, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, quest_id, step_order, title, description
		FROM quest_steps WHERE quest_id=$1
		ORDER BY step_order
	`, questID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var steps []Step
	for rows.Next() {
		var st Step
		if err := rows.Scan(&st.ID, &st.QuestID, &st.Order, &st.Title, &st.Description); err != nil {
			return nil, err
		}
		steps = append(steps, st)
	}
	return steps, nil
}

func (s *Service) ListQuests(ctx context.Context, params ListParams) ([]Quest, Pagination, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PerPage < 1 || params.PerPage > 100 {
		params.PerPage = 20
	}

	var total int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM quests q
		WHERE ($1 = '' OR q.status = $1) AND ($2 = '' OR q.created_by = $2)
	`, params.Status, params.CreatedBy).Scan(&total)
	if err != nil {
		return nil, Pagination{}, err
	}

	offset := (params.Page - 1) * params.PerPage
	rows, err := s.db.Query(ctx, `
		SELECT q.id, m.title, m.difficulty, m.theme, l.region, q.status, q.booking_enabled, q.created_by, q.created_at
		FROM quests q
		JOIN quest_metadata m ON m.id = q.metadata_id
		JOIN quest_locations l ON l.id = q.location_id
		WHERE ($1 = '' OR q.status = $1) AND ($2 = '' OR q.created_by = $2)
		ORDER BY q.created_at DESC
		LIMIT $3 OFFSET $4
	`, params.Status, params.CreatedBy, params.PerPage, offset)
	if err != nil {
		return nil, Pagination{}, err
	}
	defer rows.Close()

	var quests []Quest
	for rows.Next() {
		var q Quest
		if err := rows.Scan(&q.ID, &q.Title, &q.Difficulty, &q.Theme, &q.Region,
			&q.Status, &q.BookingEnabled, &q.CreatedBy, &q.CreatedAt); err != nil {
			return nil, Pagination{}, err
		}
		quests = append(quests, q)
	}

	totalPages := (total + params.PerPage - 1) / params.PerPage
	pagination := Pagination{
		Page:       params.Page,
		PerPage:    params.PerPage,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    params.Page < totalPages,
		HasPrev:    params.Page > 1,
	}
	return quests, pagination, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id, status string) error {
	_, err := s.db.Exec(ctx, `UPDATE quests SET status=$2, updated_at=NOW() WHERE id=$1`, id, status)
	return err
}

// DeleteQuest archives by default; a hard delete removes the quest and its
// steps (detail rows cascade in the schema).
func (s *Service) DeleteQuest(ctx context.Context, id string, hard bool) error {
	if !hard {
		return s.UpdateStatus(ctx, id, "Archived")
	}
	if _, err := s.db.Exec(ctx, `DELETE FROM quest_steps WHERE quest_id=$1`, id); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx, `DELETE FROM quests WHERE id=$1`, id)
	return err
}
