package jobhub

import (
	"context"
	"log/slog"
	"regexp"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/lmittmann/tint"
)

// adContactPattern matches any accepted contact method mention. Shared
// by both tracks.
var adContactPattern = regexp.MustCompile(`(?i)(dm|email|@|discord)`)

var (
	// Job seeker posts may state "negotiable" instead of a concrete rate
	jobSeekerCompensationPattern = regexp.MustCompile(`(?i)(\$|\bhr\b|\bhour\b|\bper\b|\bnegotiable\b)`)

	// Hiring posts must name a concrete payment amount
	hiringCompensationPattern = regexp.MustCompile(`(?i)(\$|\bhr\b|\bhour\b|\bper\b)`)
)

const (
	jobSeekerRuleSummary = "❌ **Post Removed – Job Seeker Rules**\n\n" +
		"• Min **2 sentences**\n" +
		"• **Price range** (state if negotiable)\n" +
		"• **Contact method**"

	hiringRuleSummary = "❌ **Post Removed – Hiring Rules**\n\n" +
		"• Min **3 sentences**\n" +
		"• **Payment amount** (ex. $10/hr)\n" +
		"• **Contact method**"
)

// Verdict is the outcome of evaluating an ad post against its track's
// rules. Reason is the fixed rule summary for the track when OK is false.
type Verdict struct {
	OK     bool
	Reason string
}

// AdRules is the fixed rule-set for one track's advertising channel.
// All predicates are conjunctive: any failure rejects the post.
type AdRules struct {
	MinSentences int
	Contact      *regexp.Regexp
	Compensation *regexp.Regexp
	Summary      string
}

// Evaluate classifies a post. It is a pure function of the text.
func (r AdRules) Evaluate(text string) Verdict {
	if SentenceCount(text) < r.MinSentences ||
		!r.Contact.MatchString(text) ||
		!r.Compensation.MatchString(text) {
		return Verdict{OK: false, Reason: r.Summary}
	}
	return Verdict{OK: true}
}

// adRulesForTrack returns the rule-set enforced in the track's ad channel.
func adRulesForTrack(t Track) AdRules {
	if t == TrackHiring {
		return AdRules{
			MinSentences: 3,
			Contact:      adContactPattern,
			Compensation: hiringCompensationPattern,
			Summary:      hiringRuleSummary,
		}
	}
	return AdRules{
		MinSentences: 2,
		Contact:      adContactPattern,
		Compensation: jobSeekerCompensationPattern,
		Summary:      jobSeekerRuleSummary,
	}
}

// SentenceCount returns the number of non-blank segments produced by
// splitting the text on '.', '!' and '?'.
func SentenceCount(text string) int {
	segments := strings.FieldsFunc(
		text, func(r rune) bool {
			return r == '.' || r == '!' || r == '?'
		},
	)
	count := 0
	for _, s := range segments {
		if strings.TrimSpace(s) != "" {
			count++
		}
	}
	return count
}

// handleMessageCreate moderates posts in the two advertising channels.
// Bot authors are exempt. Authors lacking the channel's verified role
// have their message deleted before any content evaluation. Rejected
// posts are deleted and answered with a self-deleting rule summary
// mentioning the author.
func (h *JobHub) handleMessageCreate(ctx context.Context, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	var track *TrackRoles
	for i := range h.tracks {
		if h.tracks[i].AdChannelID == m.ChannelID {
			track = &h.tracks[i]
			break
		}
	}
	if track == nil {
		return
	}

	logger := h.logger.With(
		loggerNameKey, "admod",
		"channel_id", m.ChannelID,
		"message_id", m.ID,
		"user_id", m.Author.ID,
		"track", track.Track.String(),
	)

	if !memberHasRole(m.Member, track.VerifiedRoleID) {
		logger.InfoContext(ctx, "deleting post from unverified author")
		h.deleteMessage(ctx, m.ChannelID, m.ID)
		return
	}

	verdict := adRulesForTrack(track.Track).Evaluate(m.Content)
	if verdict.OK {
		return
	}

	logger.InfoContext(ctx, "post violates ad rules, removing")
	h.deleteMessage(ctx, m.ChannelID, m.ID)

	notice, err := h.discord.session.ChannelMessageSend(
		m.ChannelID,
		verdict.Reason+"\n\n"+m.Author.Mention(),
	)
	if err != nil {
		logger.ErrorContext(ctx, "error sending rule violation notice", tint.Err(err))
		return
	}
	h.notices.Schedule(m.ChannelID, notice.ID)
}

// deleteMessage removes a message, discarding any error. Cleanup
// deletions are non-critical.
func (h *JobHub) deleteMessage(ctx context.Context, channelID, messageID string) {
	if err := h.discord.session.ChannelMessageDelete(channelID, messageID); err != nil {
		h.logger.DebugContext(
			ctx,
			"ignoring message delete error",
			tint.Err(err),
			"channel_id", channelID,
			"message_id", messageID,
			slog.String(loggerNameKey, "admod"),
		)
	}
}
