package api

import (
	"net/http"

	"github.com/vocabuddy/progress/internal/errors"
	"github.com/vocabuddy/progress/internal/models"
)

func queryGameType(r *http.Request) (models.GameType, error) {
	typ := models.GameType(r.URL.Query().Get("gameType"))
	if typ != "" && !typ.Valid() {
		return "", errors.NewBadRequestError("invalid game type: " + string(typ))
	}
	return typ, nil
}

func (s *Server) handleAddGameResult(w http.ResponseWriter, r *http.Request) {
	var in models.GameResultInput
	if err := decodeJSON(r, &in); err != nil {
		handleError(w, r, err)
		return
	}
	result, err := s.Games.AddResult(r.Context(), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, result)
}

func (s *Server) handleListGameResults(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	typ, err := queryGameType(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	languageID := r.URL.Query().Get("languageId")

	var results []models.GameResult
	switch {
	case languageID != "":
		results = s.Games.GetResultsByLanguage(ctx, languageID)
		if typ != "" {
			filtered := results[:0:0]
			for _, res := range results {
				if res.GameType == typ {
					filtered = append(filtered, res)
				}
			}
			results = filtered
		}
	case typ != "":
		results = s.Games.GetResultsByGame(ctx, typ)
	default:
		results = s.Games.Results(ctx)
	}
	if results == nil {
		results = []models.GameResult{}
	}
	writeJSON(w, r, http.StatusOK, results)
}

type gameStats struct {
	LanguageID   string          `json:"languageId,omitempty"`
	GameType     models.GameType `json:"gameType,omitempty"`
	AverageScore float64         `json:"averageScore"`
	TotalPlayed  int             `json:"totalPlayed"`
}

// handleGameStats reports the average score for a language or a game type
// (language wins when both are given) and the number of games played.
func (s *Server) handleGameStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	typ, err := queryGameType(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	languageID := r.URL.Query().Get("languageId")

	stats := gameStats{LanguageID: languageID, GameType: typ, TotalPlayed: s.Games.GetTotalGamesPlayed(ctx, typ)}
	switch {
	case languageID != "":
		stats.AverageScore = s.Games.GetAverageScoreByLanguage(ctx, languageID)
	case typ != "":
		stats.AverageScore = s.Games.GetAverageScoreByGame(ctx, typ)
	default:
		handleError(w, r, errors.NewBadRequestError("languageId or gameType is required"))
		return
	}
	writeJSON(w, r, http.StatusOK, stats)
}
