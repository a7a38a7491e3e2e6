package jobhub

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/lmittmann/tint"
	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	ChannelID  string
	Content    string
	Components []discordgo.MessageComponent
}

type deletedMessage struct {
	ChannelID string
	MessageID string
}

type roleChange struct {
	GuildID string
	UserID  string
	RoleID  string
}

type recordedResponse struct {
	InteractionID string
	Response      *discordgo.InteractionResponse
}

// stubSession is a recording implementation of DiscordSessionHandler.
// It captures every call instead of hitting the discord API, and can be
// primed with guild members and per-method errors.
type stubSession struct {
	mu     sync.Mutex
	logger *slog.Logger

	members map[string]*discordgo.Member

	sent        []sentMessage
	deleted     []deletedMessage
	roleAdds    []roleChange
	roleRemoves []roleChange
	responses   []recordedResponse
	edits       []string

	sendErr       error
	memberErr     error
	roleAddErr    error
	roleRemoveErr error
	respondErr    error

	nextMessageID int
}

func newStubSession(t testing.TB) *stubSession {
	t.Helper()
	logLevel := &slog.LevelVar{}
	logLevel.Set(slog.LevelWarn)
	return &stubSession{
		logger: slog.New(
			tint.NewHandler(
				os.Stdout, &tint.Options{Level: logLevel},
			),
		).With(loggerNameKey, "stub_session"),
		members: map[string]*discordgo.Member{},
	}
}

func (s *stubSession) Open() error {
	s.logger.Info("opened session")
	return nil
}

func (s *stubSession) Close() error {
	s.logger.Info("closed session")
	return nil
}

func (s *stubSession) AddHandler(_ any) func() {
	return func() {}
}

func (s *stubSession) ChannelMessageSend(
	channelID string,
	message string,
	_ ...discordgo.RequestOption,
) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return nil, s.sendErr
	}
	s.sent = append(s.sent, sentMessage{ChannelID: channelID, Content: message})
	s.nextMessageID++
	return &discordgo.Message{
		ID:        fmt.Sprintf("msg-%d", s.nextMessageID),
		ChannelID: channelID,
		Content:   message,
	}, nil
}

func (s *stubSession) ChannelMessageSendComplex(
	channelID string,
	data *discordgo.MessageSend,
	_ ...discordgo.RequestOption,
) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return nil, s.sendErr
	}
	s.sent = append(
		s.sent, sentMessage{
			ChannelID:  channelID,
			Content:    data.Content,
			Components: data.Components,
		},
	)
	s.nextMessageID++
	return &discordgo.Message{
		ID:        fmt.Sprintf("msg-%d", s.nextMessageID),
		ChannelID: channelID,
		Content:   data.Content,
	}, nil
}

func (s *stubSession) ChannelMessageDelete(
	channelID string,
	messageID string,
	_ ...discordgo.RequestOption,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(
		s.deleted, deletedMessage{ChannelID: channelID, MessageID: messageID},
	)
	return nil
}

func (s *stubSession) GuildMember(
	guildID string,
	userID string,
	_ ...discordgo.RequestOption,
) (*discordgo.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.memberErr != nil {
		return nil, s.memberErr
	}
	member, ok := s.members[userID]
	if !ok {
		return nil, fmt.Errorf("unknown member %s in guild %s", userID, guildID)
	}
	return member, nil
}

func (s *stubSession) GuildMemberRoleAdd(
	guildID string,
	userID string,
	roleID string,
	_ ...discordgo.RequestOption,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.roleAddErr != nil {
		return s.roleAddErr
	}
	s.roleAdds = append(
		s.roleAdds, roleChange{GuildID: guildID, UserID: userID, RoleID: roleID},
	)
	return nil
}

func (s *stubSession) GuildMemberRoleRemove(
	guildID string,
	userID string,
	roleID string,
	_ ...discordgo.RequestOption,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.roleRemoveErr != nil {
		return s.roleRemoveErr
	}
	s.roleRemoves = append(
		s.roleRemoves, roleChange{GuildID: guildID, UserID: userID, RoleID: roleID},
	)
	return nil
}

func (s *stubSession) InteractionRespond(
	interaction *discordgo.Interaction,
	resp *discordgo.InteractionResponse,
	_ ...discordgo.RequestOption,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.respondErr != nil {
		return s.respondErr
	}
	s.responses = append(
		s.responses, recordedResponse{
			InteractionID: interaction.ID,
			Response:      resp,
		},
	)
	return nil
}

func (s *stubSession) InteractionResponseEdit(
	_ *discordgo.Interaction,
	newresp *discordgo.WebhookEdit,
	_ ...discordgo.RequestOption,
) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content := ""
	if newresp.Content != nil {
		content = *newresp.Content
	}
	s.edits = append(s.edits, content)
	return &discordgo.Message{Content: content}, nil
}

func (s *stubSession) UpdateCustomStatus(status string) error {
	s.logger.Info("updating custom status", "status", status)
	return nil
}

func (s *stubSession) SetHTTPClient(_ *http.Client) {}

func (s *stubSession) SetLogLevel(_ slog.Level) error {
	return nil
}

func (s *stubSession) Sent() []sentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sentMessage, len(s.sent))
	copy(out, s.sent)
	return out
}

func (s *stubSession) Deleted() []deletedMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]deletedMessage, len(s.deleted))
	copy(out, s.deleted)
	return out
}

func (s *stubSession) RoleAdds() []roleChange {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]roleChange, len(s.roleAdds))
	copy(out, s.roleAdds)
	return out
}

func (s *stubSession) RoleRemoves() []roleChange {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]roleChange, len(s.roleRemoves))
	copy(out, s.roleRemoves)
	return out
}

func (s *stubSession) Responses() []recordedResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]recordedResponse, len(s.responses))
	copy(out, s.responses)
	return out
}

func (s *stubSession) Edits() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.edits))
	copy(out, s.edits)
	return out
}

// Test fixture IDs, standing in for discord snowflakes.
const (
	testGuildID = "guild-1"

	testChannelWelcome      = "chan-welcome"
	testChannelReview       = "chan-review"
	testChannelVerification = "chan-verification"
	testChannelJobSeekerAds = "chan-jobseeker-ads"
	testChannelHiringAds    = "chan-hiring-ads"

	testRoleHiringUnverified    = "role-hiring-unverified"
	testRoleHiringVerified      = "role-hiring-verified"
	testRoleJobSeekerUnverified = "role-jobseeker-unverified"
	testRoleJobSeekerVerified   = "role-jobseeker-verified"
)

func newTestConfig(t testing.TB) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Discord.Token = "test-token"
	cfg.Discord.GuildID = testGuildID
	cfg.Discord.Channels = ChannelConfig{
		Welcome:              testChannelWelcome,
		VerificationRequests: testChannelReview,
		ManualVerification:   testChannelVerification,
		JobSeekerAds:         testChannelJobSeekerAds,
		HiringAds:            testChannelHiringAds,
	}
	cfg.Discord.Roles = RoleConfig{
		HiringUnverified:    testRoleHiringUnverified,
		HiringVerified:      testRoleHiringVerified,
		JobSeekerUnverified: testRoleJobSeekerUnverified,
		JobSeekerVerified:   testRoleJobSeekerVerified,
	}

	logLevel := slog.LevelWarn
	cfg.LogLevel.Set(logLevel)
	cfg.Discord.LogLevel.Set(logLevel)
	cfg.Discord.DiscordGoLogLevel.Set(logLevel)
	cfg.API.LogLevel.Set(logLevel)

	return cfg
}

// newTestJobHub builds a JobHub wired to a stub session, with a short
// notice-deletion delay.
func newTestJobHub(t testing.TB) (*JobHub, *stubSession) {
	t.Helper()

	cfg := newTestConfig(t)
	h, err := New(cfg)
	require.NoError(t, err)

	stub := newStubSession(t)
	h.discord.session = stub
	h.notices = newNoticeScheduler(stub, h.logger, 20*time.Millisecond)
	t.Cleanup(
		func() {
			ctx, cancel := context.WithTimeout(
				context.Background(), 5*time.Second,
			)
			defer cancel()
			h.notices.Stop(ctx)
		},
	)
	return h, stub
}

func buttonInteraction(
	id string,
	channelID string,
	customID string,
	user *discordgo.User,
) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			ID:        id,
			Type:      discordgo.InteractionMessageComponent,
			GuildID:   testGuildID,
			ChannelID: channelID,
			Member:    &discordgo.Member{User: user},
			Data: discordgo.MessageComponentInteractionData{
				CustomID:      customID,
				ComponentType: discordgo.ButtonComponent,
			},
		},
	}
}

func adPost(
	channelID string,
	content string,
	author *discordgo.User,
	roleIDs ...string,
) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{
		Message: &discordgo.Message{
			ID:        "ad-post-1",
			ChannelID: channelID,
			Content:   content,
			Author:    author,
			Member:    &discordgo.Member{Roles: roleIDs},
		},
	}
}

func testUser(id string) *discordgo.User {
	return &discordgo.User{ID: id, Username: "user-" + id}
}
