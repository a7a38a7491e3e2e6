// Package jobhub implements a Discord moderation and onboarding bot for
// the JobHub community server.
//
// The bot handles three things:
//
//   - Onboarding: new members get a welcome prompt with Hiring and
//     Job Seeker buttons; choosing one assigns the track's unverified
//     role.
//   - Manual verification: members request verification for posting,
//     guarded by a per-user cooldown and a pending-request registry;
//     staff approve or reject requests from a review channel, which
//     transitions the member's unverified role to the verified one and
//     posts a public notice.
//   - Ad moderation: posts in the two advertising channels are deleted
//     unless the author holds the channel's verified role and the post
//     meets the track's sentence, contact and compensation rules.
//     Violations get a self-deleting explanation.
//
// Key components:
//
//   - JobHub: the main struct wiring everything together.
//   - CooldownTracker / PendingRequests: in-memory verification state.
//   - AdRules: the per-track ad content policy.
//   - Discord / DiscordSessionHandler: the gateway session layer.
//   - API: a read-only operational status HTTP server.
//
// All workflow state is in-memory; restarts clear pending requests and
// cooldowns.
package jobhub
