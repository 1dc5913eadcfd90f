package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/tphakala/hogwarts-heroes/internal/character"
	"github.com/tphakala/hogwarts-heroes/internal/quiz"
)

// CharacterListResponse wraps a list of character summaries.
type CharacterListResponse struct {
	Count      int                 `json:"count"`
	Characters []character.Summary `json:"characters"`
}

// QuizResponse wraps a set of quiz questions.
type QuizResponse struct {
	Count     int             `json:"count"`
	Questions []quiz.Question `json:"questions"`
}

func newListResponse(list []character.Summary) CharacterListResponse {
	if list == nil {
		list = []character.Summary{}
	}
	return CharacterListResponse{Count: len(list), Characters: list}
}

func (s *Server) listCharacters(c echo.Context) error {
	list, err := s.characters.GetAllCharacters(c.Request().Context())
	if err != nil {
		return s.HandleError(c, err, "Failed to load characters", 0)
	}
	return c.JSON(http.StatusOK, newListResponse(list))
}

func (s *Server) searchCharacters(c echo.Context) error {
	list, err := s.characters.SearchCharacters(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return s.HandleError(c, err, "Failed to search characters", 0)
	}
	return c.JSON(http.StatusOK, newListResponse(list))
}

// filterCharacters treats every query parameter as a filter field. The
// first value wins when a field repeats.
func (s *Server) filterCharacters(c echo.Context) error {
	params := character.FilterParams{}
	for field, values := range c.QueryParams() {
		if len(values) > 0 {
			params[field] = values[0]
		}
	}

	list, err := s.characters.FilterCharacters(c.Request().Context(), params)
	if err != nil {
		return s.HandleError(c, err, "Failed to filter characters", 0)
	}
	return c.JSON(http.StatusOK, newListResponse(list))
}

func (s *Server) filterFields(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]string{"fields": character.FilterFields()})
}

func (s *Server) characterDetails(c echo.Context) error {
	id := c.Param("id")
	detail, err := s.characters.GetCharacterDetails(c.Request().Context(), id)
	if err != nil {
		return s.HandleError(c, err, "Failed to load character", 0)
	}
	if detail == nil {
		return s.HandleError(c, nil, "Character not found", http.StatusNotFound)
	}
	return c.JSON(http.StatusOK, detail)
}

func (s *Server) cacheStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, s.characters.CacheStatus(c.Request().Context()))
}

func (s *Server) quizQuestions(c echo.Context) error {
	n := 0
	if raw := c.QueryParam("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return s.HandleError(c, err, "Parameter n must be a non-negative integer", http.StatusBadRequest)
		}
		n = v
	}

	questions := s.quiz.Random(n, nil)
	return c.JSON(http.StatusOK, QuizResponse{Count: len(questions), Questions: questions})
}
