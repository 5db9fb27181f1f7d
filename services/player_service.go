package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/caromclub/league-system/models"
	"github.com/caromclub/league-system/repositories"
	"github.com/caromclub/league-system/storage"
)

type RegisterPlayerInput struct {
	FullName string `json:"full_name"`
	Nickname string `json:"nickname"`
	Phone    string `json:"phone"`
}

// PlayerCard is the public lookup view: the player plus their ledger in every
// tournament they have played in.
type PlayerCard struct {
	Player    *models.Player           `json:"player"`
	Standings []*models.PlayerStanding `json:"standings"`
}

type PlayerService interface {
	Register(ctx context.Context, input RegisterPlayerInput) (*models.Player, error)
	List(ctx context.Context) ([]*models.Player, error)
	// LookupByPhone serves the public result lookup. The phone number must
	// match exactly.
	LookupByPhone(ctx context.Context, phone string) (*PlayerCard, error)
	UploadAvatar(ctx context.Context, playerID int, contentType string, reader io.Reader) (*models.Player, error)
}

type playerService struct {
	playerRepo   repositories.PlayerRepository
	standingRepo repositories.StandingRepository
	uploader     storage.FileUploader
}

func NewPlayerService(
	playerRepo repositories.PlayerRepository,
	standingRepo repositories.StandingRepository,
	uploader storage.FileUploader,
) PlayerService {
	return &playerService{
		playerRepo:   playerRepo,
		standingRepo: standingRepo,
		uploader:     uploader,
	}
}

func (s *playerService) Register(ctx context.Context, input RegisterPlayerInput) (*models.Player, error) {
	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" {
		return nil, ErrPlayerNameRequired
	}

	player := &models.Player{
		FullName: fullName,
		Nickname: normalizeOptional(strings.TrimSpace(input.Nickname)),
		Phone:    normalizeOptional(strings.TrimSpace(input.Phone)),
	}

	if err := s.playerRepo.Create(ctx, player); err != nil {
		switch {
		case errors.Is(err, repositories.ErrPlayerNicknameConflict):
			return nil, ErrPlayerNicknameConflict
		case errors.Is(err, repositories.ErrPlayerPhoneConflict):
			return nil, ErrPlayerPhoneConflict
		}
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return player, nil
}

func (s *playerService) List(ctx context.Context) ([]*models.Player, error) {
	players, err := s.playerRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	for _, p := range players {
		populatePlayerAvatarURL(p, s.uploader)
	}
	return players, nil
}

func (s *playerService) LookupByPhone(ctx context.Context, phone string) (*PlayerCard, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, ErrPhoneRequired
	}

	player, err := s.playerRepo.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to look up player by phone: %w", err)
	}
	populatePlayerAvatarURL(player, s.uploader)

	rows, err := s.standingRepo.ListByPlayer(ctx, player.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list standings for player %d: %w", player.ID, err)
	}

	return &PlayerCard{Player: player, Standings: rows}, nil
}

func (s *playerService) UploadAvatar(ctx context.Context, playerID int, contentType string, reader io.Reader) (*models.Player, error) {
	if s.uploader == nil {
		return nil, ErrAvatarStorageDisabled
	}

	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to load player %d: %w", playerID, err)
	}

	key := fmt.Sprintf("avatars/players/%d/%d", playerID, time.Now().UnixNano())
	result, err := s.uploader.Upload(ctx, key, contentType, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to upload avatar for player %d: %w", playerID, err)
	}

	oldKey := player.AvatarKey
	if err := s.playerRepo.UpdateAvatarKey(ctx, playerID, &result.Key); err != nil {
		return nil, fmt.Errorf("failed to store avatar key for player %d: %w", playerID, err)
	}
	if oldKey != nil && *oldKey != "" {
		// Best effort, a stale object is not worth failing the request.
		_ = s.uploader.Delete(ctx, *oldKey)
	}

	player.AvatarKey = &result.Key
	populatePlayerAvatarURL(player, s.uploader)
	return player, nil
}
