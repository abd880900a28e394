package main

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/google/go-github/v32/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/nanohard/petal-lottery-bot/pkg/config"
)

const (
	requestTitleLimit = 60
	requestLabel      = "discord request"
)

// requestFiler turns /request into GitHub issues.
type requestFiler struct {
	issues *github.IssuesService
	owner  string
	repo   string
}

func newRequestFiler(conf config.GitHub) *requestFiler {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: conf.Token},
	)
	tc := oauth2.NewClient(context.Background(), ts)

	return &requestFiler{
		issues: github.NewClient(tc).Issues,
		owner:  conf.Owner,
		repo:   conf.Repo,
	}
}

func (f *requestFiler) file(ctx context.Context, author, text string) (*github.Issue, error) {
	iss, _, err := f.issues.Create(ctx, f.owner, f.repo, issueRequest(author, text))
	if err != nil {
		return nil, fmt.Errorf("f.issues.Create -> %w", err)
	}
	return iss, nil
}

// issueRequest titles the issue with the first 60 characters of text.
func issueRequest(author, text string) *github.IssueRequest {
	text = strings.TrimSpace(text)
	title := text
	if utf8.RuneCountInString(title) > requestTitleLimit {
		title = string([]rune(title)[:requestTitleLimit])
	}
	body := text + "\n\nRequested on Discord by " + author
	state := "open"
	labels := []string{requestLabel}

	return &github.IssueRequest{
		Title:  &title,
		Body:   &body,
		Labels: &labels,
		State:  &state,
	}
}

func (b *bot) commandRequest(s *discordgo.Session, i *discordgo.Interaction, data discordgo.ApplicationCommandInteractionData) {
	opts := optionMap(data)
	text := opts.str("text")
	if b.requests == nil || text == "" {
		reply(s, i, false, message{Content: "Usage: /request this is your feature request or bug!", Ephemeral: true})
		return
	}

	if err := deferReply(s, i, true); err != nil {
		zap.L().Error("deferReply", zap.Error(err))
		return
	}

	user := invoker(i)
	iss, err := b.requests.file(context.Background(), user.Username, text)
	if err != nil {
		fail(s, i, true, err)
		return
	}

	zap.L().Info("issue created", zap.Int("number", iss.GetNumber()), zap.String("user", user.ID))
	reply(s, i, true, message{Content: fmt.Sprintf("Issue #%d has been created: %s", iss.GetNumber(), iss.GetHTMLURL()), Ephemeral: true})
}
