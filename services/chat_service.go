package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/scan-order/models"
	"github.com/yeremiapane/scan-order/utils"
	"gorm.io/gorm"
)

const (
	defaultSystemPrompt = `You are the AI assistant of this restaurant.
Answer questions about the restaurant in a friendly, professional way.
Recommend dishes based on what the guest likes, and give accurate opening hours, address and contact details.
Only answer from the information provided. If you do not know, say so politely.
Reply in the guest's language and keep answers short but complete.`
	defaultTemperature = 60

	// historyMessages is how much of the branch history goes into a prompt (3 exchanges).
	historyMessages = 6
)

type ChatInput struct {
	BranchID  string  `json:"branch_id" binding:"required"`
	Message   string  `json:"message" binding:"required"`
	SessionID *string `json:"session_id"`
}

type ChatReply struct {
	Response   string `json:"response"`
	BranchName string `json:"branch_name"`
	SessionID  string `json:"session_id"`
}

type ChatBranchInfo struct {
	BranchID     string `json:"branch_id"`
	BranchName   string `json:"branch_name"`
	Address      string `json:"address"`
	Phone        string `json:"phone"`
	OpeningHours string `json:"opening_hours"`
	ClosingHours string `json:"closing_hours"`
}

type AIConfigUpdate struct {
	SystemPrompt *string `json:"system_prompt"`
	Temperature  *int    `json:"temperature"`
}

type ChatHealth struct {
	Status              string `json:"status"`
	ActiveConversations int    `json:"active_conversations"`
}

type ChatOptions struct {
	MaxOutputTokens int
	Timeout         time.Duration
}

// ChatService answers guest questions with an LLM grounded on branch data.
type ChatService struct {
	db    *gorm.DB
	llm   LLMClient
	store *ConversationStore
	opts  ChatOptions
	now   func() time.Time
}

func NewChatService(db *gorm.DB, llm LLMClient, store *ConversationStore, opts ChatOptions) *ChatService {
	if opts.MaxOutputTokens <= 0 {
		opts.MaxOutputTokens = 800
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &ChatService{db: db, llm: llm, store: store, opts: opts, now: time.Now}
}

func (s *ChatService) Chat(ctx context.Context, in ChatInput) (*ChatReply, error) {
	sessionID := uuid.NewString()
	if in.SessionID != nil && *in.SessionID != "" {
		sessionID = *in.SessionID
	}

	db := s.db.WithContext(ctx)
	branch, err := findBranch(db, in.BranchID)
	if err != nil {
		return nil, err
	}
	branchContext, err := s.branchContext(db, branch)
	if err != nil {
		return nil, err
	}
	cfg, err := s.aiConfig(db)
	if err != nil {
		return nil, err
	}

	prompt := s.buildPrompt(cfg.SystemPrompt, branchContext, s.store.Recent(branch.ID, historyMessages), in.Message)

	callCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()
	answer, err := s.llm.Generate(callCtx, prompt, float32(cfg.Temperature)/100, s.opts.MaxOutputTokens)
	if err != nil {
		return nil, &utils.AppError{Kind: utils.KindInternal, Message: "AI Error: " + err.Error(), Err: err}
	}

	now := s.now()
	s.store.Append(branch.ID,
		ChatTurn{Role: RoleUser, Content: in.Message, Timestamp: now},
		ChatTurn{Role: RoleAssistant, Content: answer, Timestamp: now},
	)
	utils.InfoLogger.WithFields(logrus.Fields{"branch": branch.ID, "session": sessionID}).Debug("Chat answered")

	return &ChatReply{Response: answer, BranchName: branch.Name, SessionID: sessionID}, nil
}

func (s *ChatService) buildPrompt(system, branchContext string, history []ChatTurn, question string) string {
	var b strings.Builder
	b.WriteString(system)
	b.WriteString("\n\n")
	b.WriteString(branchContext)

	if len(history) > 0 {
		b.WriteString("\n=== RECENT CONVERSATION ===\n")
		for _, turn := range history {
			who := "Guest"
			if turn.Role == RoleAssistant {
				who = "You"
			}
			fmt.Fprintf(&b, "%s: %s\n", who, turn.Content)
		}
	}

	b.WriteString(`
ANSWERING GUIDELINES:
- Use the information above to answer accurately
- When asked about a dish, describe it and give its price
- When asked about discounts, start with the items on sale
- When asked for directions, give the address and the Google Maps link
- When asked about opening hours, say whether the restaurant is open right now
- When the guest wants a table, ask for party size and arrival time
- Keep answers concise, friendly and easy to read
`)
	fmt.Fprintf(&b, "\nGuest question: %s\n\nYour answer:", question)
	return b.String()
}

type contextItem struct {
	name        string
	description string
	price       decimal.Decimal
	discount    decimal.Decimal
	final       decimal.Decimal
}

// branchContext renders branch details, the orderable menu grouped by
// category and table availability as prompt text.
func (s *ChatService) branchContext(db *gorm.DB, branch *models.Branch) (string, error) {
	var items []models.MenuItem
	err := db.Preload("Category").
		Joins("JOIN categories ON categories.id = menu_items.category_id").
		Where("menu_items.branch_id = ? AND categories.tenant_id = ? AND menu_items.status IN ?",
			branch.ID, branch.TenantID, []string{models.MenuAvailable, models.MenuActive}).
		Order("categories.name ASC, menu_items.name ASC").
		Find(&items).Error
	if err != nil {
		return "", utils.NewInternal("Error building branch context", err)
	}
	var tables []models.DiningTable
	if err := db.Where("branch_id = ?", branch.ID).Order("table_number ASC").Find(&tables).Error; err != nil {
		return "", utils.NewInternal("Error building branch context", err)
	}

	var b strings.Builder
	now := s.now()
	status := "Under maintenance"
	if branch.Status == models.StatusActive {
		status = "Operating"
	}
	fmt.Fprintf(&b, "=== RESTAURANT ===\nName: %s\nAddress: %s\nPhone: %s\nManager: %s\nStatus: %s\n",
		branch.Name, orUnset(strings.Trim(branch.Address+", "+branch.Province, ", ")), orUnset(branch.Phone),
		orUnset(branch.ManagerName), status)

	fmt.Fprintf(&b, "\n=== OPENING HOURS ===\nOpens: %s\nCloses: %s\nCurrent time: %s\n%s\n",
		orUnset(branch.OpeningHours), orUnset(branch.ClosingHours), utils.FormatClock(now), openState(branch, now))

	fmt.Fprintf(&b, "\n=== PAYMENT ===\nBank code: %s\nAccount number: %s\nAccount name: %s\nCashback: %s%% on every payment\n",
		orUnsetPtr(branch.BankCode), orUnsetPtr(branch.BankAccountNumber), orUnsetPtr(branch.BankAccountName),
		branch.CashbackPercent.String())

	maps := branch.GoogleMapsLink
	if maps == "" {
		maps = "No Google Maps link yet"
	}
	fmt.Fprintf(&b, "\n=== GOOGLE MAPS ===\n%s\n", maps)

	b.WriteString("\n=== MENU ===\n")
	grouped := map[string][]contextItem{}
	var categories []string
	var discounted []contextItem
	for _, item := range items {
		ci := contextItem{
			name:     item.Name,
			price:    item.Price,
			discount: item.DiscountPercent,
			final:    utils.EffectivePrice(item.Price, item.DiscountPercent),
		}
		ci.description = "A house favourite"
		if item.Description != nil && *item.Description != "" {
			ci.description = *item.Description
		}
		category := item.Category.Name
		if _, ok := grouped[category]; !ok {
			categories = append(categories, category)
		}
		grouped[category] = append(grouped[category], ci)
		if ci.discount.IsPositive() {
			discounted = append(discounted, ci)
		}
	}
	if len(items) == 0 {
		b.WriteString("The menu has no items yet.\n")
	}
	sort.Strings(categories)
	for _, category := range categories {
		fmt.Fprintf(&b, "\n%s (%d items):\n", category, len(grouped[category]))
		for _, ci := range grouped[category] {
			price := utils.FormatCurrency(ci.final)
			if ci.discount.IsPositive() {
				price = fmt.Sprintf("%s (%s%% off %s)", price, ci.discount.String(), utils.FormatCurrency(ci.price))
			}
			fmt.Fprintf(&b, "  - %s: %s\n    %s\n", ci.name, price, ci.description)
		}
	}

	fmt.Fprintf(&b, "\n=== MENU STATISTICS ===\nItems: %d\nCategories: %d\nDiscounted items: %d\n",
		len(items), len(categories), len(discounted))
	if len(discounted) > 0 {
		sort.SliceStable(discounted, func(i, j int) bool { return discounted[i].discount.GreaterThan(discounted[j].discount) })
		b.WriteString("\n=== SPECIAL OFFERS ===\n")
		for _, ci := range discounted {
			fmt.Fprintf(&b, "  * %s: %s%% off, now %s (was %s)\n",
				ci.name, ci.discount.String(), utils.FormatCurrency(ci.final), utils.FormatCurrency(ci.price))
		}
	}

	counts := map[string]int{}
	var free []string
	for _, t := range tables {
		counts[t.Status]++
		if t.Status == models.TableAvailable && len(free) < 5 {
			free = append(free, t.TableNumber)
		}
	}
	fmt.Fprintf(&b, "\n=== TABLES ===\nTotal: %d\nAvailable: %d\nOccupied: %d\nReserved: %d\n",
		len(tables), counts[models.TableAvailable], counts[models.TableOccupied], counts[models.TableReserved])
	if len(free) > 0 {
		fmt.Fprintf(&b, "Free tables: %s\n", strings.Join(free, ", "))
	}
	return b.String(), nil
}

func openState(branch *models.Branch, now time.Time) string {
	if branch.OpeningHours == "" || branch.ClosingHours == "" {
		return "Opening hours not set"
	}
	open, err := utils.IsOpenAt(branch.OpeningHours, branch.ClosingHours, now)
	if err != nil {
		return "Open state unknown"
	}
	if open {
		return "OPEN NOW"
	}
	return "CLOSED NOW"
}

func orUnset(s string) string {
	if s == "" {
		return "Not set"
	}
	return s
}

func orUnsetPtr(s *string) string {
	if s == nil {
		return "Not set"
	}
	return orUnset(*s)
}

// aiConfig returns the single config row, creating the default on first use.
func (s *ChatService) aiConfig(db *gorm.DB) (*models.AIConfig, error) {
	var cfg models.AIConfig
	err := db.Where(models.AIConfig{}).Attrs(models.AIConfig{
		SystemPrompt: defaultSystemPrompt,
		Temperature:  defaultTemperature,
	}).FirstOrCreate(&cfg).Error
	if err != nil {
		return nil, utils.NewInternal("failed to load AI config", err)
	}
	return &cfg, nil
}

func (s *ChatService) GetAIConfig(ctx context.Context) (*models.AIConfig, error) {
	return s.aiConfig(s.db.WithContext(ctx))
}

func (s *ChatService) UpdateAIConfig(ctx context.Context, in AIConfigUpdate) (*models.AIConfig, error) {
	if in.Temperature != nil && (*in.Temperature < 0 || *in.Temperature > 100) {
		return nil, utils.NewValidation("Temperature must be between 0 and 100")
	}
	var cfg *models.AIConfig
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if cfg, err = s.aiConfig(tx); err != nil {
			return err
		}
		updates := map[string]interface{}{}
		if in.SystemPrompt != nil {
			cfg.SystemPrompt = *in.SystemPrompt
			updates["system_prompt"] = cfg.SystemPrompt
		}
		if in.Temperature != nil {
			cfg.Temperature = *in.Temperature
			updates["temperature"] = cfg.Temperature
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(cfg).Updates(updates).Error
	})
	if err != nil {
		return nil, asAppError("failed to update AI config", err)
	}
	return cfg, nil
}

// ClearHistory reports whether the branch had any history.
func (s *ChatService) ClearHistory(branchID string) bool {
	return s.store.Clear(branchID)
}

func (s *ChatService) BranchInfo(ctx context.Context, branchID string) (*ChatBranchInfo, error) {
	branch, err := findBranch(s.db.WithContext(ctx), branchID)
	if err != nil {
		return nil, err
	}
	return &ChatBranchInfo{
		BranchID:     branch.ID,
		BranchName:   branch.Name,
		Address:      branch.Address,
		Phone:        branch.Phone,
		OpeningHours: branch.OpeningHours,
		ClosingHours: branch.ClosingHours,
	}, nil
}

func (s *ChatService) Health() ChatHealth {
	return ChatHealth{Status: "ok", ActiveConversations: s.store.Len()}
}
