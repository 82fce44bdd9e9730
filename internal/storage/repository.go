package storage

import "github.com/ad/langbot-referrals/internal/domain"

var (
	_ domain.UserRepository           = (*UserRepository)(nil)
	_ domain.ReferralRepository       = (*ReferralRepository)(nil)
	_ domain.RewardRepository         = (*RewardRepository)(nil)
	_ domain.ConversationSessionStore = (*ConversationStorage)(nil)
)
