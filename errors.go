/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
)

// Engine rejections. All of these are handled as no-ops or private
// acknowledgments; none of them terminate a connection or the session.
var (
	ErrUnknownLifeline     = errors.New("unknown lifeline")
	ErrLifelineUnavailable = errors.New("lifeline already used")
	ErrPollActive          = errors.New("poll already active")
	ErrPollNotActive       = errors.New("no active poll")
	ErrInvalidOption       = errors.New("invalid option")
	ErrAlreadyVoted        = errors.New("already voted in this poll")
	ErrBuzzerNotArmed      = errors.New("buzzer not armed")
	ErrQuestionNotFound    = errors.New("question not found")
)

func logf(cfg *Config, format string, args ...any) {
	if !cfg.verbose {
		return
	}

	log.Printf("%s | "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}

func newPage(title, body string) string {
	var htmlBody strings.Builder

	htmlBody.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	htmlBody.WriteString(`<style>`)
	htmlBody.WriteString(`html,body,a{display:block;height:100%;width:100%;text-decoration:none;color:inherit;cursor:auto;}</style>`)
	htmlBody.WriteString(fmt.Sprintf("<title>%s</title></head>", title))
	htmlBody.WriteString(fmt.Sprintf("<body><a href=\"/\">%s</a></body></html>", body))

	return htmlBody.String()
}
