// Package recommend generates personalised restaurant suggestions for a
// user. Suggestions come from the Gemini API and are cached in the database
// for 24 hours so repeat visits within a day do not burn API quota.
package recommend

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amirabdullahi/Dinemate/internal/model"
)

// FreshFor is how long a cached suggestion set stays valid.
const FreshFor = 24 * time.Hour

// Suggester produces the two ID groups from a prompt. Satisfied by
// *GeminiClient; tests plug in a fake.
type Suggester interface {
	Suggest(ctx context.Context, prompt string) (favourites, fresh []uint64, err error)
}

// Store caches suggestion sets per user. Satisfied by *repository.RecommendationRepo.
type Store interface {
	GetByUser(ctx context.Context, userID uint64) (*model.Recommendation, error)
	Replace(ctx context.Context, rec *model.Recommendation) error
}

// RestaurantLister supplies the candidate pool. Satisfied by *repository.RestaurantRepo.
type RestaurantLister interface {
	ListAll(ctx context.Context) ([]model.Restaurant, error)
}

// UserReader supplies the user's profile and favourites. Satisfied by
// *repository.UserRepo.
type UserReader interface {
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	FavouriteIDs(ctx context.Context, userID uint64) ([]uint64, error)
}

// Service ties the cache, the candidate pool and the Suggester together.
type Service struct {
	Store       Store
	Restaurants RestaurantLister
	Users       UserReader
	Suggester   Suggester
	Now         func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// ForUser returns the user's suggestion set, regenerating it when the
// cached one is missing or older than 24 hours.
func (s *Service) ForUser(ctx context.Context, userID uint64) (*model.Recommendation, error) {
	cached, err := s.Store.GetByUser(ctx, userID)
	switch {
	case err == nil:
		if s.now().Sub(cached.CreatedAt) < FreshFor {
			return cached, nil
		}
	case errors.Is(err, sql.ErrNoRows):
		// no cache yet, generate below
	default:
		return nil, err
	}

	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	favs, err := s.Users.FavouriteIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	pool, err := s.Restaurants.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	prompt := buildPrompt(user.DiningPreferences, pool, favs)
	byFavourites, newToYou, err := s.Suggester.Suggest(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate suggestions: %w", err)
	}

	rec := &model.Recommendation{
		UserID:            userID,
		BasedOnFavourites: byFavourites,
		NewToYou:          newToYou,
		CreatedAt:         s.now(),
	}
	if err := s.Store.Replace(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// promptRestaurant is the slim view of a restaurant fed to the model.
type promptRestaurant struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	CuisineType string `json:"cuisine_type"`
	Address     string `json:"address"`
}

func buildPrompt(preferences string, pool []model.Restaurant, favourites []uint64) string {
	slim := make([]promptRestaurant, 0, len(pool))
	favSet := make(map[uint64]bool, len(favourites))
	for _, id := range favourites {
		favSet[id] = true
	}
	var favSlim []promptRestaurant
	for _, r := range pool {
		p := promptRestaurant{ID: r.ID, Name: r.Name, CuisineType: r.CuisineType, Address: r.Address}
		slim = append(slim, p)
		if favSet[r.ID] {
			favSlim = append(favSlim, p)
		}
	}
	poolJSON, _ := json.Marshal(slim)
	favJSON, _ := json.Marshal(favSlim)

	var b strings.Builder
	b.WriteString("You are a restaurant recommendation engine.\n")
	fmt.Fprintf(&b, "The user has condition: %s.\n", preferences)
	b.WriteString("Here is the full list of restaurants:\n")
	b.Write(poolJSON)
	b.WriteString("\n\nHere are the user's favourites (direct or from past reservations):\n")
	b.Write(favJSON)
	b.WriteString("\nInstructions:\n")
	b.WriteString("- Return ONLY restaurant IDs in JSON.\n")
	b.WriteString("- Group them into \"basedOnFavourites\" and \"newToYou\".\n")
	b.WriteString("- \"basedOnFavourites\" must include restaurants with same cuisine type as user's favourites.\n")
	b.WriteString("- \"newToYou\" must include restaurants NOT in the user's favourites.\n")
	b.WriteString("- Ensure no restaurant appears in both arrays.\n")
	return b.String()
}
