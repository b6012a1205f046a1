package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/julienschmidt/httprouter"
)

// Question is one entry of the externally supplied question set. The
// engine never mutates it.
type Question struct {
	Prompt  string                 `json:"question"`
	Options map[OptionLabel]string `json:"options"`
	Correct OptionLabel            `json:"correct"`
}

// PublicQuestion is the broadcast view of a question: options only, the
// correct answer stays server-side until the moderator reveals it.
type PublicQuestion struct {
	Index   int                    `json:"index"`
	Prompt  string                 `json:"question"`
	Options map[OptionLabel]string `json:"options"`
}

func (q Question) public(index int) PublicQuestion {
	options := make(map[OptionLabel]string, len(q.Options))
	for o, text := range q.Options {
		options[o] = text
	}

	return PublicQuestion{
		Index:   index,
		Prompt:  q.Prompt,
		Options: options,
	}
}

// QuestionBank is an immutable ordered question set.
type QuestionBank struct {
	questions []Question
}

func newQuestionBank(questions []Question) (*QuestionBank, error) {
	for i, q := range questions {
		if q.Prompt == "" {
			return nil, fmt.Errorf("question %d: empty prompt", i)
		}
		if len(q.Options) != len(optionLabels) {
			return nil, fmt.Errorf("question %d: expected %d options, got %d", i, len(optionLabels), len(q.Options))
		}
		for _, o := range optionLabels {
			if _, ok := q.Options[o]; !ok {
				return nil, fmt.Errorf("question %d: missing option %s", i, o)
			}
		}
		if !q.Correct.valid() {
			return nil, fmt.Errorf("question %d: invalid correct option %q", i, q.Correct)
		}
	}

	return &QuestionBank{questions: questions}, nil
}

func loadQuestionBank(path string) (*QuestionBank, error) {
	var data []byte
	var err error

	if path == "" {
		data, err = assets.ReadFile("assets/hotseat/questions.json")
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	var questions []Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, err
	}

	return newQuestionBank(questions)
}

func (qb *QuestionBank) Len() int {
	return len(qb.questions)
}

// Get returns the question at index i, or ErrQuestionNotFound when i is
// outside the set.
func (qb *QuestionBank) Get(i int) (Question, error) {
	if i < 0 || i >= len(qb.questions) {
		return Question{}, ErrQuestionNotFound
	}
	return qb.questions[i], nil
}

// serveQuestion exposes direct question lookup for the moderator
// console, including the correct answer, so it stays behind the admin
// session.
func serveQuestion(cfg *Config, bank *QuestionBank, sessions *SessionStore, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		startTime := time.Now()

		sess, ok := sessions.fromRequest(r)
		if !ok || sess.role != RoleAdmin {
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			securityHeaders(cfg, w)
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"admin session required"}` + "\n"))

			return
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		securityHeaders(cfg, w)

		index, err := strconv.Atoi(p.ByName("id"))
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid question index"}` + "\n"))

			return
		}

		question, err := bank.Get(index)
		if err != nil {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":"question not found"}` + "\n"))

			return
		}

		data, err := json.Marshal(struct {
			Index int `json:"index"`
			Question
		}{Index: index, Question: question})
		if err != nil {
			errs <- err

			return
		}

		written, err := w.Write(append(data, '\n'))
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Question %d (%s) to %s in %s",
			index,
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}
