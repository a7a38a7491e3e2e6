package jobhub

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/lmittmann/tint"
)

const (
	welcomeMessage = "👋 **Welcome to JobHub**\n\n" +
		"Please choose how you want to continue:"

	hiringSelectedMessage = "🧑‍💼 **Hiring selected**\n\n" +
		"📘 Read the **#rules-hiring**\n" +
		"📝 Then request **verification for posting in #manual-verification**."

	jobSeekerSelectedMessage = "💼 **Job Seeker selected**\n\n" +
		"📘 Read the **#rules-jobseeker**\n" +
		"📝 Then request **verification for posting in #manual-verification**."

	requestSentMessage = "📨 **Request sent!**\n\n" +
		"A moderator will review your request shortly."

	alreadyPendingMessage = "⛔ You already have a pending verification request."

	approvalCompleteMessage = "✅ Approval complete."
	rejectionSentMessage    = "❌ Rejection sent."
)

// interactionState tracks whether an interaction has already been
// responded to, so faults surfacing at the outer handler don't cause a
// double acknowledgment.
type interactionState struct {
	responded bool
}

// handleMemberAdd posts the track-selection prompt to the welcome
// channel when a new member joins.
func (h *JobHub) handleMemberAdd(ctx context.Context, m *discordgo.GuildMemberAdd) {
	logger := h.logger.With(loggerNameKey, "verification")

	_, err := h.discord.session.ChannelMessageSendComplex(
		h.config.Discord.Channels.Welcome,
		&discordgo.MessageSend{
			Content:    welcomeMessage,
			Components: []discordgo.MessageComponent{trackSelectButtons()},
		},
	)
	if err != nil {
		logger.ErrorContext(
			ctx,
			"error sending welcome message",
			tint.Err(err),
			"user_id", m.User.ID,
		)
		return
	}
	logger.InfoContext(ctx, "sent welcome message", "user_id", m.User.ID)
}

// handleInteraction routes button interactions to the verification
// workflow. Any fault from a branch is logged here and, if nothing has
// been sent for the interaction yet, answered with a single generic
// failure message.
func (h *JobHub) handleInteraction(ctx context.Context, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	user := getDiscordUser(i)
	if user == nil {
		h.logger.WarnContext(
			ctx,
			"interaction with no user",
			interactionLogAttrs(i)...,
		)
		return
	}

	customID := i.MessageComponentData().CustomID
	logger := h.logger.With(loggerNameKey, "verification").With(
		append(interactionLogAttrs(i), "custom_id", customID)...,
	)
	ctx = WithLogger(ctx, logger)

	st := &interactionState{}
	var err error

	switch customID {
	case customIDChooseHiring:
		err = h.chooseTrack(ctx, st, i, user, TrackHiring)
	case customIDChooseJobSeeker:
		err = h.chooseTrack(ctx, st, i, user, TrackJobSeeker)
	case customIDRequestVerification:
		err = h.requestVerification(ctx, st, i, user)
	default:
		targetID, approve, ok := parseResolveCustomID(customID)
		if !ok {
			logger.DebugContext(ctx, "unrecognized component custom ID")
			return
		}
		err = h.resolveRequest(ctx, st, i, approve, targetID)
	}

	if err != nil {
		logger.ErrorContext(ctx, "error handling interaction", tint.Err(err))
		if !st.responded {
			if respondErr := h.replyEphemeral(
				st, i, DefaultDiscordErrorMessage,
			); respondErr != nil {
				logger.ErrorContext(
					ctx,
					"error sending generic failure response",
					tint.Err(respondErr),
				)
			}
		}
	}
}

// chooseTrack assigns the track's unverified role. Adding an
// already-held role is a no-op on the discord side, and selecting both
// tracks is permitted.
func (h *JobHub) chooseTrack(
	ctx context.Context,
	st *interactionState,
	i *discordgo.InteractionCreate,
	user *discordgo.User,
	track Track,
) error {
	if err := h.deferEphemeral(st, i); err != nil {
		return fmt.Errorf("error acknowledging interaction: %w", err)
	}

	var roles TrackRoles
	for _, tr := range h.tracks {
		if tr.Track == track {
			roles = tr
			break
		}
	}

	if err := h.discord.session.GuildMemberRoleAdd(
		h.guildID(i), user.ID, roles.UnverifiedRoleID,
	); err != nil {
		return fmt.Errorf("error adding unverified role: %w", err)
	}

	logger, _ := ContextLogger(ctx)
	logger.InfoContext(ctx, "track selected", "track", track.String())

	reply := jobSeekerSelectedMessage
	if track == TrackHiring {
		reply = hiringSelectedMessage
	}
	return h.editReply(i, reply)
}

// requestVerification submits a verification request: cooldown check
// first, then the pending-request gate, then the staff-facing card.
// Cooldown and duplicate rejections are expected policy outcomes, not
// faults, and aren't logged as errors.
func (h *JobHub) requestVerification(
	ctx context.Context,
	st *interactionState,
	i *discordgo.InteractionCreate,
	user *discordgo.User,
) error {
	logger, _ := ContextLogger(ctx)

	if h.cooldowns.Remaining(user.ID) > 0 {
		return h.replyEphemeral(
			st, i, fmt.Sprintf(
				"⏳ You must wait **%d minutes** before requesting verification again.",
				h.cooldowns.WaitMinutes(user.ID),
			),
		)
	}

	if !h.pending.TryAcquire(user.ID) {
		return h.replyEphemeral(st, i, alreadyPendingMessage)
	}

	h.cooldowns.RecordAttempt(user.ID)

	if err := h.deferEphemeral(st, i); err != nil {
		return fmt.Errorf("error acknowledging interaction: %w", err)
	}

	_, err := h.discord.session.ChannelMessageSendComplex(
		h.config.Discord.Channels.VerificationRequests,
		&discordgo.MessageSend{
			Content: fmt.Sprintf(
				"📝 **Verification Request**\n\nUser: %s", user.Mention(),
			),
			Components: []discordgo.MessageComponent{resolveButtons(user.ID)},
		},
	)
	if err != nil {
		return fmt.Errorf("error posting verification request card: %w", err)
	}

	logger.InfoContext(ctx, "verification request submitted")
	return h.editReply(i, requestSentMessage)
}

// resolveRequest applies a staff Approve/Reject decision to the target
// user. On approval, tracks are checked in the trackRoles order, so a
// member improbably holding both unverified roles resolves as Hiring.
// Either way the target's pending-request entry is released; their
// cooldown entry is left in place.
func (h *JobHub) resolveRequest(
	ctx context.Context,
	st *interactionState,
	i *discordgo.InteractionCreate,
	approve bool,
	targetID string,
) error {
	logger, _ := ContextLogger(ctx)

	if err := h.deferEphemeral(st, i); err != nil {
		return fmt.Errorf("error acknowledging interaction: %w", err)
	}

	guildID := h.guildID(i)
	target, err := h.discord.session.GuildMember(guildID, targetID)
	if err != nil {
		return fmt.Errorf("error fetching member %s: %w", targetID, err)
	}

	var notice string
	if approve {
		label := ""
		for _, tr := range h.tracks {
			if !memberHasRole(target, tr.UnverifiedRoleID) {
				continue
			}
			if err = h.discord.session.GuildMemberRoleRemove(
				guildID, targetID, tr.UnverifiedRoleID,
			); err != nil {
				return fmt.Errorf("error removing unverified role: %w", err)
			}
			if err = h.discord.session.GuildMemberRoleAdd(
				guildID, targetID, tr.VerifiedRoleID,
			); err != nil {
				return fmt.Errorf("error adding verified role: %w", err)
			}
			label = tr.Track.Label()
			break
		}
		if label == "" {
			// Roles may have changed externally since the request was
			// made. The notice still goes out, with an empty label.
			logger.WarnContext(
				ctx,
				"approved member holds neither unverified role",
				"target_id", targetID,
			)
		}
		notice = fmt.Sprintf(
			"✅ **Approved for Posting**\n\n"+
				"%s has been approved as **%s**.\n"+
				"You may now post in the advertising channels.",
			mentionUser(targetID), label,
		)
	} else {
		notice = fmt.Sprintf(
			"❌ **Request Rejected**\n\n"+
				"%s, your request to **verify for posting** was not approved.\n"+
				"Please contact staff if you need clarification.",
			mentionUser(targetID),
		)
	}

	if sendErr := h.discord.channelMessageSend(
		h.config.Discord.Channels.ManualVerification, notice,
	); sendErr != nil {
		return fmt.Errorf("error posting resolution notice: %w", sendErr)
	}

	// best-effort removal of the staff request card
	if i.Message != nil {
		h.deleteMessage(ctx, i.ChannelID, i.Message.ID)
	}

	h.pending.Release(targetID)

	logger.InfoContext(
		ctx,
		"verification request resolved",
		"target_id", targetID,
		slog.Bool("approved", approve),
	)

	if approve {
		return h.editReply(i, approvalCompleteMessage)
	}
	return h.editReply(i, rejectionSentMessage)
}

// guildID prefers the interaction's guild, falling back to the
// configured guild.
func (h *JobHub) guildID(i *discordgo.InteractionCreate) string {
	if i.GuildID != "" {
		return i.GuildID
	}
	return h.config.Discord.GuildID
}

// deferEphemeral sends a deferred ephemeral acknowledgment, marking the
// interaction as responded so the outer handler won't double-ack.
func (h *JobHub) deferEphemeral(
	st *interactionState,
	i *discordgo.InteractionCreate,
) error {
	err := h.discord.session.InteractionRespond(
		i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Flags: discordgo.MessageFlagsEphemeral,
			},
		},
	)
	if err == nil {
		st.responded = true
	}
	return err
}

// replyEphemeral sends an immediate ephemeral response.
func (h *JobHub) replyEphemeral(
	st *interactionState,
	i *discordgo.InteractionCreate,
	content string,
) error {
	err := h.discord.session.InteractionRespond(
		i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: content,
				Flags:   discordgo.MessageFlagsEphemeral,
			},
		},
	)
	if err == nil {
		st.responded = true
	}
	return err
}

// editReply replaces the deferred acknowledgment's content.
func (h *JobHub) editReply(i *discordgo.InteractionCreate, content string) error {
	_, err := h.discord.session.InteractionResponseEdit(
		i.Interaction, &discordgo.WebhookEdit{Content: &content},
	)
	return err
}
