package jobhub

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentenceCount(t *testing.T) {
	testCases := []struct {
		text string
		want int
	}{
		{"", 0},
		{"   ", 0},
		{"...", 0},
		{"Need work.", 1},
		{"Need work", 1},
		{"Hiring now. $10/hr.", 2},
		{"One. Two! Three?", 3},
		{"One... Two", 2},
		{"Trailing. ", 1},
	}
	for _, tc := range testCases {
		assert.Equalf(t, tc.want, SentenceCount(tc.text), "text=%q", tc.text)
	}
}

func TestEvaluateJobSeekerRules(t *testing.T) {
	rules := adRulesForTrack(TrackJobSeeker)

	testCases := []struct {
		name string
		text string
		ok   bool
	}{
		{
			"valid post",
			"Looking for design work. $20/hr negotiable, DM me.",
			true,
		},
		{
			"too short, no contact, no price",
			"Need work.",
			false,
		},
		{
			"negotiable counts as compensation",
			"Open for freelance gigs. Rate negotiable, email me anytime.",
			true,
		},
		{
			"missing contact",
			"Looking for work. Rates start at $15 per hour.",
			false,
		},
		{
			"missing compensation",
			"Looking for work. DM me for details!",
			false,
		},
		{
			"one sentence with everything else",
			"Designer for hire at $20/hr, DM me",
			false,
		},
	}

	for _, tc := range testCases {
		t.Run(
			tc.name, func(t *testing.T) {
				verdict := rules.Evaluate(tc.text)
				assert.Equal(t, tc.ok, verdict.OK)
				if !tc.ok {
					assert.Equal(t, jobSeekerRuleSummary, verdict.Reason)
				} else {
					assert.Empty(t, verdict.Reason)
				}
			},
		)
	}
}

func TestEvaluateHiringRules(t *testing.T) {
	rules := adRulesForTrack(TrackHiring)

	testCases := []struct {
		name string
		text string
		ok   bool
	}{
		{
			"valid post",
			"We are hiring a designer. Pay is $15 per hour. Contact via email.",
			true,
		},
		{
			"only two sentences",
			"Hiring now. $10/hr.",
			false,
		},
		{
			"negotiable is not a payment amount for hiring",
			"We need a writer. Pay is negotiable for now. Send a DM to apply.",
			false,
		},
		{
			"missing contact",
			"We are hiring. Pay is $15 per hour. Start immediately.",
			false,
		},
	}

	for _, tc := range testCases {
		t.Run(
			tc.name, func(t *testing.T) {
				verdict := rules.Evaluate(tc.text)
				assert.Equal(t, tc.ok, verdict.OK)
				if !tc.ok {
					assert.Equal(t, hiringRuleSummary, verdict.Reason)
				}
			},
		)
	}
}

func TestMessageCreateIgnoresBots(t *testing.T) {
	h, stub := newTestJobHub(t)

	author := testUser("bot-1")
	author.Bot = true

	m := adPost(testChannelJobSeekerAds, "spam", author)
	h.handleMessageCreate(context.Background(), m)

	assert.Empty(t, stub.Deleted())
	assert.Empty(t, stub.Sent())
}

func TestMessageCreateIgnoresUnmonitoredChannels(t *testing.T) {
	h, stub := newTestJobHub(t)

	m := adPost("chan-general", "anything at all", testUser("u1"))
	h.handleMessageCreate(context.Background(), m)

	assert.Empty(t, stub.Deleted())
	assert.Empty(t, stub.Sent())
}

func TestMessageCreateDeletesUnverifiedAuthorPost(t *testing.T) {
	h, stub := newTestJobHub(t)

	// content would pass the rules, but the author lacks the verified
	// role, which short-circuits evaluation
	m := adPost(
		testChannelJobSeekerAds,
		"Looking for design work. $20/hr negotiable, DM me.",
		testUser("u1"),
		testRoleJobSeekerUnverified,
	)
	h.handleMessageCreate(context.Background(), m)

	deleted := stub.Deleted()
	require.Len(t, deleted, 1)
	assert.Equal(t, m.ID, deleted[0].MessageID)

	// no notice for unverified authors
	assert.Empty(t, stub.Sent())
}

func TestMessageCreateVerifiedRoleIsPerTrack(t *testing.T) {
	h, stub := newTestJobHub(t)

	// a jobseeker-verified member posting in the hiring channel is
	// unverified for that channel's track
	m := adPost(
		testChannelHiringAds,
		"We are hiring a designer. Pay is $15 per hour. Contact via email.",
		testUser("u1"),
		testRoleJobSeekerVerified,
	)
	h.handleMessageCreate(context.Background(), m)

	require.Len(t, stub.Deleted(), 1)
	assert.Empty(t, stub.Sent())
}

func TestMessageCreateAcceptsValidPost(t *testing.T) {
	h, stub := newTestJobHub(t)

	m := adPost(
		testChannelHiringAds,
		"We are hiring a designer. Pay is $15 per hour. Contact via email.",
		testUser("u1"),
		testRoleHiringVerified,
	)
	h.handleMessageCreate(context.Background(), m)

	assert.Empty(t, stub.Deleted())
	assert.Empty(t, stub.Sent())
}

func TestMessageCreateRejectsViolatingPost(t *testing.T) {
	h, stub := newTestJobHub(t)

	author := testUser("u1")
	m := adPost(
		testChannelHiringAds,
		"Hiring now. $10/hr.",
		author,
		testRoleHiringVerified,
	)
	h.handleMessageCreate(context.Background(), m)

	deleted := stub.Deleted()
	require.Len(t, deleted, 1)
	assert.Equal(t, m.ID, deleted[0].MessageID)

	sent := stub.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, testChannelHiringAds, sent[0].ChannelID)
	assert.Contains(t, sent[0].Content, "Post Removed – Hiring Rules")
	assert.Contains(t, sent[0].Content, author.Mention())

	// the notice self-deletes after the configured delay
	require.Eventually(
		t, func() bool {
			return len(stub.Deleted()) == 2
		}, time.Second, 5*time.Millisecond,
	)
}

func TestMessageCreateNilMemberTreatedAsUnverified(t *testing.T) {
	h, stub := newTestJobHub(t)

	m := &discordgo.MessageCreate{
		Message: &discordgo.Message{
			ID:        "no-member",
			ChannelID: testChannelJobSeekerAds,
			Content:   "Looking for design work. $20/hr negotiable, DM me.",
			Author:    testUser("u1"),
		},
	}
	h.handleMessageCreate(context.Background(), m)

	require.Len(t, stub.Deleted(), 1)
}
