// Package content decodes and validates per-type challenge payloads. A
// challenge row stores an opaque JSON column; its shape is fixed by the
// challenge type. Decoding is pure: no side effects, no store access.
package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/eduventure/eduventure-api/model"
)

var (
	ErrUnknownType    = errors.New("unknown challenge type")
	ErrInvalidContent = errors.New("invalid challenge content")
)

// VideoContent interrupts playback with questions at fixed timestamps.
type VideoContent struct {
	VideoURL  string          `json:"videoUrl"`
	Questions []VideoQuestion `json:"questions"`
}

// VideoQuestion pauses the video at Time seconds.
type VideoQuestion struct {
	Time          int      `json:"time"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

// MCQContent is a sequence of multiple-choice questions scored per question.
type MCQContent struct {
	Questions []MCQQuestion `json:"questions"`
}

type MCQQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Points        int      `json:"points"`
}

// CodingContent is a free-text coding task checked against an expected
// output substring. This is not real execution; see CheckOutput.
type CodingContent struct {
	Task           string `json:"task"`
	StarterCode    string `json:"starterCode"`
	ExpectedOutput string `json:"expectedOutput"`
	Points         int    `json:"points"`
}

// CheckOutput reports whether a submission passes the coding challenge.
// Grading is a substring containment check on the expected output, as in
// the original design. It does not execute the submitted code.
func (c CodingContent) CheckOutput(submission string) bool {
	if c.ExpectedOutput == "" {
		return false
	}
	return strings.Contains(submission, c.ExpectedOutput)
}

// MazeContent is a memory-matching pair game laid out on a square grid.
type MazeContent struct {
	GridSize int        `json:"gridSize"`
	Pairs    []MazePair `json:"pairs"`
	Points   int        `json:"points"`
}

type MazePair struct {
	Text  string `json:"text"`
	Match string `json:"match"`
}

// MazeTile is one cell of the rendered board.
type MazeTile struct {
	Text   string `json:"text"`
	PairID int    `json:"pairId"` // -1 for the filler tile
}

// Board lays the pairs out as tiles. Pairs beyond gridSize²/2 are
// discarded, and a grid with an odd number of cells gets a single filler
// tile whenever the pairs leave cells empty.
func (c MazeContent) Board() []MazeTile {
	cells := c.GridSize * c.GridSize
	maxPairs := cells / 2

	pairs := c.Pairs
	if len(pairs) > maxPairs {
		pairs = pairs[:maxPairs]
	}

	tiles := make([]MazeTile, 0, cells)
	for i, p := range pairs {
		tiles = append(tiles, MazeTile{Text: p.Text, PairID: i})
		tiles = append(tiles, MazeTile{Text: p.Match, PairID: i})
	}
	if cells%2 == 1 && len(tiles) < cells {
		tiles = append(tiles, MazeTile{Text: "★", PairID: -1})
	}
	return tiles
}

// CareerContent is static interview-prep reference material, no scoring.
type CareerContent struct {
	InterviewQuestions []InterviewQuestion `json:"interviewQuestions"`
	Resources          []Resource          `json:"resources"`
	Points             int                 `json:"points"`
}

type InterviewQuestion struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type Resource struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Decode parses raw content into the typed payload for the given
// challenge type. The returned value is one of the *Content structs.
func Decode(t model.ChallengeType, raw []byte) (interface{}, error) {
	switch t {
	case model.ChallengeTypeVideo:
		var c VideoContent
		if err := strictUnmarshal(raw, &c); err != nil {
			return nil, err
		}
		return c, nil
	case model.ChallengeTypeMCQ:
		var c MCQContent
		if err := strictUnmarshal(raw, &c); err != nil {
			return nil, err
		}
		return c, nil
	case model.ChallengeTypeCoding:
		var c CodingContent
		if err := strictUnmarshal(raw, &c); err != nil {
			return nil, err
		}
		return c, nil
	case model.ChallengeTypeMaze:
		var c MazeContent
		if err := strictUnmarshal(raw, &c); err != nil {
			return nil, err
		}
		return c, nil
	case model.ChallengeTypeCareer:
		var c CareerContent
		if err := strictUnmarshal(raw, &c); err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
}

// Validate checks that raw content is well-formed for the given type.
// The store runs this before any challenge write.
func Validate(t model.ChallengeType, raw []byte) error {
	decoded, err := Decode(t, raw)
	if err != nil {
		return err
	}

	switch c := decoded.(type) {
	case VideoContent:
		if c.VideoURL == "" {
			return fmt.Errorf("%w: video challenge requires videoUrl", ErrInvalidContent)
		}
		for i, q := range c.Questions {
			if err := checkOptions(q.Options, q.CorrectAnswer); err != nil {
				return fmt.Errorf("%w: question %d: %v", ErrInvalidContent, i, err)
			}
		}
	case MCQContent:
		if len(c.Questions) == 0 {
			return fmt.Errorf("%w: mcq challenge requires questions", ErrInvalidContent)
		}
		for i, q := range c.Questions {
			if err := checkOptions(q.Options, q.CorrectAnswer); err != nil {
				return fmt.Errorf("%w: question %d: %v", ErrInvalidContent, i, err)
			}
		}
	case CodingContent:
		if c.Task == "" || c.ExpectedOutput == "" {
			return fmt.Errorf("%w: coding challenge requires task and expectedOutput", ErrInvalidContent)
		}
	case MazeContent:
		if c.GridSize < 2 {
			return fmt.Errorf("%w: maze gridSize must be at least 2", ErrInvalidContent)
		}
		if len(c.Pairs) == 0 {
			return fmt.Errorf("%w: maze challenge requires pairs", ErrInvalidContent)
		}
	case CareerContent:
		if len(c.InterviewQuestions) == 0 && len(c.Resources) == 0 {
			return fmt.Errorf("%w: career challenge requires questions or resources", ErrInvalidContent)
		}
	}
	return nil
}

func checkOptions(options []string, correct int) error {
	if len(options) < 2 {
		return errors.New("needs at least two options")
	}
	if correct < 0 || correct >= len(options) {
		return errors.New("correctAnswer out of range")
	}
	return nil
}

func strictUnmarshal(raw []byte, dest interface{}) error {
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	return nil
}
