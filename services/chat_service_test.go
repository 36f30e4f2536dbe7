package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/scan-order/models"
	"github.com/yeremiapane/scan-order/utils"
)

type fakeLLM struct {
	reply       string
	err         error
	prompts     []string
	temperature float32
	maxTokens   int
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, temperature float32, maxTokens int) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.temperature, f.maxTokens = temperature, maxTokens
	return f.reply, f.err
}

func newChat(f *fixture, llm LLMClient) (*ChatService, *ConversationStore) {
	store := NewConversationStore(10)
	svc := NewChatService(f.db, llm, store, ChatOptions{MaxOutputTokens: 800, Timeout: time.Second})
	svc.now = func() time.Time { return time.Date(2026, 10, 17, 12, 30, 0, 0, time.Local) }
	return svc, store
}

func TestChatBuildsBranchContext(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.db.Model(&f.pizza).Update("discount_percent", dec("20")).Error)
	llm := &fakeLLM{reply: "Try the pizza!"}
	svc, store := newChat(f, llm)

	reply, err := svc.Chat(ctx, ChatInput{BranchID: f.branch.ID, Message: "What is on sale?"})
	require.NoError(t, err)
	assert.Equal(t, "Try the pizza!", reply.Response)
	assert.Equal(t, "District 1", reply.BranchName)
	assert.NotEmpty(t, reply.SessionID)

	require.Len(t, llm.prompts, 1)
	prompt := llm.prompts[0]
	assert.Contains(t, prompt, "Burger: 50,000đ")
	assert.Contains(t, prompt, "Pizza: 56,000đ (20% off 70,000đ)")
	assert.Contains(t, prompt, "Mains (2 items)")
	assert.Contains(t, prompt, "OPEN NOW")
	assert.Contains(t, prompt, "Account number: 0123456789")
	assert.Contains(t, prompt, "Free tables: T1")
	assert.Contains(t, prompt, "Guest question: What is on sale?")
	assert.InDelta(t, 0.6, llm.temperature, 0.0001)
	assert.Equal(t, 800, llm.maxTokens)

	assert.Len(t, store.Recent(f.branch.ID, 0), 2)
}

func TestChatCarriesRecentHistory(t *testing.T) {
	f := newFixture(t)
	llm := &fakeLLM{reply: "ok"}
	svc, _ := newChat(f, llm)
	session := "conversation-1"

	for _, msg := range []string{"one", "two", "three", "four", "five"} {
		reply, err := svc.Chat(ctx, ChatInput{BranchID: f.branch.ID, Message: msg, SessionID: &session})
		require.NoError(t, err)
		assert.Equal(t, session, reply.SessionID)
	}

	last := llm.prompts[4]
	assert.Contains(t, last, "=== RECENT CONVERSATION ===")
	assert.Contains(t, last, "Guest: two")
	assert.Contains(t, last, "Guest: four")
	assert.NotContains(t, last, "Guest: one", "only the last three exchanges are sent")
}

func TestChatFailureKeepsHistoryClean(t *testing.T) {
	f := newFixture(t)
	svc, store := newChat(f, &fakeLLM{err: errors.New("quota exceeded")})

	_, err := svc.Chat(ctx, ChatInput{BranchID: f.branch.ID, Message: "hi"})
	assert.True(t, utils.IsKind(err, utils.KindInternal))
	assert.EqualError(t, err, "AI Error: quota exceeded")
	assert.Equal(t, 0, store.Len())

	_, err = svc.Chat(ctx, ChatInput{BranchID: "missing", Message: "hi"})
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
	assert.EqualError(t, err, "Branch not found")
}

func TestAIConfig(t *testing.T) {
	f := newFixture(t)
	svc, _ := newChat(f, &fakeLLM{})

	cfg, err := svc.GetAIConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Temperature)

	again, err := svc.GetAIConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, cfg.ID, again.ID)

	temp, prompt := 80, "Be brief."
	updated, err := svc.UpdateAIConfig(ctx, AIConfigUpdate{SystemPrompt: &prompt, Temperature: &temp})
	require.NoError(t, err)
	assert.Equal(t, 80, updated.Temperature)

	var stored models.AIConfig
	f.reload(t, &stored, cfg.ID)
	assert.Equal(t, "Be brief.", stored.SystemPrompt)

	bad := 101
	_, err = svc.UpdateAIConfig(ctx, AIConfigUpdate{Temperature: &bad})
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}

func TestChatHistoryAndHealth(t *testing.T) {
	f := newFixture(t)
	svc, _ := newChat(f, &fakeLLM{reply: "hello"})

	_, err := svc.Chat(ctx, ChatInput{BranchID: f.branch.ID, Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, 1, svc.Health().ActiveConversations)

	assert.True(t, svc.ClearHistory(f.branch.ID))
	assert.False(t, svc.ClearHistory(f.branch.ID))
	assert.Equal(t, 0, svc.Health().ActiveConversations)

	info, err := svc.BranchInfo(ctx, f.branch.ID)
	require.NoError(t, err)
	assert.Equal(t, "08:00", info.OpeningHours)
}
