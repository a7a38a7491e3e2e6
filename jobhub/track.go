package jobhub

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Button custom IDs exchanged over the interaction channel. The
// approve/reject IDs carry the target user ID as a suffix.
const (
	customIDChooseHiring        = "choose_hiring"
	customIDChooseJobSeeker     = "choose_jobseeker"
	customIDRequestVerification = "request_verification"
	customIDApprovePrefix       = "approve_"
	customIDRejectPrefix        = "reject_"
)

// Track is one of the two membership categories, each with its own
// unverified/verified role pair and advertising channel.
type Track int

const (
	TrackHiring Track = iota
	TrackJobSeeker
)

func (t Track) String() string {
	switch t {
	case TrackHiring:
		return "hiring"
	case TrackJobSeeker:
		return "jobseeker"
	default:
		return "unknown"
	}
}

// Label is the human-facing track name used in public notices.
func (t Track) Label() string {
	switch t {
	case TrackHiring:
		return "Hiring"
	case TrackJobSeeker:
		return "Job Seeker"
	default:
		return ""
	}
}

// TrackRoles binds a track to its configured role pair and ad channel.
type TrackRoles struct {
	Track            Track
	UnverifiedRoleID string
	VerifiedRoleID   string
	AdChannelID      string
}

// trackRoles resolves the per-track role/channel table from config.
// Hiring is listed first: when a member somehow holds both unverified
// roles, approval resolves the Hiring track (first match wins).
func trackRoles(cfg *DiscordConfig) []TrackRoles {
	return []TrackRoles{
		{
			Track:            TrackHiring,
			UnverifiedRoleID: cfg.Roles.HiringUnverified,
			VerifiedRoleID:   cfg.Roles.HiringVerified,
			AdChannelID:      cfg.Channels.HiringAds,
		},
		{
			Track:            TrackJobSeeker,
			UnverifiedRoleID: cfg.Roles.JobSeekerUnverified,
			VerifiedRoleID:   cfg.Roles.JobSeekerVerified,
			AdChannelID:      cfg.Channels.JobSeekerAds,
		},
	}
}

func approveCustomID(userID string) string {
	return customIDApprovePrefix + userID
}

func rejectCustomID(userID string) string {
	return customIDRejectPrefix + userID
}

// parseResolveCustomID extracts the target user ID from an
// approve_/reject_ button custom ID. ok is false for any other ID.
func parseResolveCustomID(customID string) (userID string, approve bool, ok bool) {
	if userID, found := strings.CutPrefix(customID, customIDApprovePrefix); found && userID != "" {
		return userID, true, true
	}
	if userID, found := strings.CutPrefix(customID, customIDRejectPrefix); found && userID != "" {
		return userID, false, true
	}
	return "", false, false
}

// trackSelectButtons is the component row attached to the welcome message.
func trackSelectButtons() discordgo.ActionsRow {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				CustomID: customIDChooseHiring,
				Label:    "🧑‍💼 Hiring",
				Style:    discordgo.PrimaryButton,
			},
			discordgo.Button{
				CustomID: customIDChooseJobSeeker,
				Label:    "💼 Job Seeker",
				Style:    discordgo.SuccessButton,
			},
		},
	}
}

// resolveButtons is the component row attached to a staff request card.
func resolveButtons(userID string) discordgo.ActionsRow {
	return discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				CustomID: approveCustomID(userID),
				Label:    "✅ Approve",
				Style:    discordgo.SuccessButton,
			},
			discordgo.Button{
				CustomID: rejectCustomID(userID),
				Label:    "❌ Reject",
				Style:    discordgo.DangerButton,
			},
		},
	}
}
