package services

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/scan-order/models"
	"github.com/yeremiapane/scan-order/utils"
	"gorm.io/gorm"
)

// AdminService backs the platform administration screens.
type AdminService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db, now: time.Now}
}

type AdminDashboard struct {
	TotalRestaurants  int64 `json:"total_restaurants"`
	TotalUsers        int64 `json:"total_users"`
	ActiveRestaurants int64 `json:"active_restaurants"`
	ActiveUsers       int64 `json:"active_users"`
}

// Page is a paginated admin listing.
type Page[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int64 `json:"total_pages"`
}

func newPage[T any](data []T, total int64, page, limit int) Page[T] {
	pages := (total + int64(limit) - 1) / int64(limit)
	if pages < 1 {
		pages = 1
	}
	if data == nil {
		data = []T{}
	}
	return Page[T]{Data: data, Total: total, Page: page, Limit: limit, TotalPages: pages}
}

type RestaurantRow struct {
	TenantID    string          `json:"tenant_id"`
	Name        string          `json:"name"`
	OwnerName   string          `json:"owner_name"`
	OwnerEmail  string          `json:"owner_email"`
	BranchCount int64           `json:"branch_count"`
	Revenue     decimal.Decimal `json:"revenue"`
	Status      string          `json:"status"`
	CreatedAt   string          `json:"created_at"`
}

type RevenueRow struct {
	TenantID string          `json:"tenant_id"`
	Name     string          `json:"name"`
	Orders   int64           `json:"orders"`
	Revenue  decimal.Decimal `json:"revenue"`
	Status   string          `json:"status"`
}

type RevenuePage struct {
	Page[RevenueRow]
	TotalOrders int64  `json:"total_orders"`
	Period      string `json:"period"`
}

type UserRow struct {
	UserID     string `json:"user_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	TenantName string `json:"tenant_name"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

type UserPage struct {
	Page[UserRow]
	ActiveUsers int64 `json:"active_users"`
}

type RestaurantUpdate struct {
	TenantName *string `json:"tenant_name" binding:"omitempty,min=1"`
	OwnerName  *string `json:"owner_name" binding:"omitempty,min=1"`
	OwnerEmail *string `json:"owner_email" binding:"omitempty,email"`
}

type UserUpdate struct {
	FullName *string `json:"full_name" binding:"omitempty,min=1"`
	Role     *string `json:"role" binding:"omitempty,oneof=owner staff chef customer"`
}

func (s *AdminService) Dashboard(ctx context.Context) (*AdminDashboard, error) {
	db := s.db.WithContext(ctx)
	d := &AdminDashboard{}
	if err := db.Model(&models.Tenant{}).Count(&d.TotalRestaurants).Error; err != nil {
		return nil, utils.NewInternal("failed to count restaurants", err)
	}
	if err := db.Model(&models.Tenant{}).Where("status = ?", models.StatusActive).Count(&d.ActiveRestaurants).Error; err != nil {
		return nil, utils.NewInternal("failed to count restaurants", err)
	}
	if err := db.Model(&models.User{}).Count(&d.TotalUsers).Error; err != nil {
		return nil, utils.NewInternal("failed to count users", err)
	}
	if err := db.Model(&models.User{}).
		Joins("LEFT JOIN staffs ON staffs.user_id = users.id").
		Where("staffs.status = ? OR staffs.id IS NULL", models.StatusActive).
		Count(&d.ActiveUsers).Error; err != nil {
		return nil, utils.NewInternal("failed to count users", err)
	}
	return d, nil
}

func (s *AdminService) Restaurants(ctx context.Context, page, limit int, search string) (*Page[RestaurantRow], error) {
	db := s.db.WithContext(ctx)
	page, limit, offset := utils.Page(page, limit, 5)

	q := db.Model(&models.Tenant{})
	if search = strings.TrimSpace(search); search != "" {
		q = q.Where("name LIKE ?", "%"+search+"%")
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, utils.NewInternal("failed to count restaurants", err)
	}
	var tenants []models.Tenant
	if err := q.Order("created_at ASC").Offset(offset).Limit(limit).Find(&tenants).Error; err != nil {
		return nil, utils.NewInternal("failed to list restaurants", err)
	}

	rows := make([]RestaurantRow, 0, len(tenants))
	for _, t := range tenants {
		row := RestaurantRow{TenantID: t.ID, Name: t.Name, OwnerName: "N/A", OwnerEmail: "N/A", Status: t.Status, CreatedAt: t.CreatedAt.Format("02/01/2006")}
		if err := db.Model(&models.Branch{}).Where("tenant_id = ?", t.ID).Count(&row.BranchCount).Error; err != nil {
			return nil, utils.NewInternal("failed to count branches", err)
		}
		rev, err := revenue(db, t.ID, "")
		if err != nil {
			return nil, err
		}
		row.Revenue = rev
		if owner, ok := s.owner(db, t.ID); ok {
			row.OwnerName, row.OwnerEmail = owner.FullName, owner.Email
		}
		rows = append(rows, row)
	}
	p := newPage(rows, total, page, limit)
	return &p, nil
}

// Revenue reports per-restaurant orders and settled revenue for today, this month or all time.
func (s *AdminService) Revenue(ctx context.Context, page, limit int, period string) (*RevenuePage, error) {
	db := s.db.WithContext(ctx)
	page, limit, offset := utils.Page(page, limit, 5)

	var since time.Time
	now := s.now()
	switch period {
	case "", "today":
		period, since = "today", utils.BeginningOfDay(now)
	case "month":
		since = utils.BeginningOfMonth(now)
	case "all":
	default:
		return nil, utils.NewValidation("period must be one of: today, month, all")
	}

	q := db.Model(&models.Tenant{}).Where("status = ?", models.StatusActive)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, utils.NewInternal("failed to count restaurants", err)
	}
	var tenants []models.Tenant
	if err := q.Order("created_at ASC").Offset(offset).Limit(limit).Find(&tenants).Error; err != nil {
		return nil, utils.NewInternal("failed to list restaurants", err)
	}

	result := &RevenuePage{Period: period}
	rows := make([]RevenueRow, 0, len(tenants))
	for _, t := range tenants {
		row := RevenueRow{TenantID: t.ID, Name: t.Name, Status: t.Status}
		orders := tenantOrders(db, t.ID)
		var err error
		if since.IsZero() {
			row.Revenue, err = revenue(db, t.ID, "")
		} else {
			orders = orders.Where("orders.order_time >= ?", since)
			row.Revenue, err = revenue(db, t.ID, "bills.created_at >= ?", since)
		}
		if err != nil {
			return nil, err
		}
		if err := orders.Count(&row.Orders).Error; err != nil {
			return nil, utils.NewInternal("failed to count orders", err)
		}
		result.TotalOrders += row.Orders
		rows = append(rows, row)
	}
	result.Page = newPage(rows, total, page, limit)
	return result, nil
}

// Users lists accounts; the role filter applies to derived roles, so paging happens after filtering.
func (s *AdminService) Users(ctx context.Context, page, limit int, search, role string) (*UserPage, error) {
	db := s.db.WithContext(ctx)
	page, limit, offset := utils.Page(page, limit, 10)

	q := db.Model(&models.User{})
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + search + "%"
		q = q.Where("full_name LIKE ? OR email LIKE ?", like, like)
	}
	var users []models.User
	if err := q.Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, utils.NewInternal("failed to list users", err)
	}

	tenantNames := map[string]string{}
	var tenants []models.Tenant
	if err := db.Select("id", "name").Find(&tenants).Error; err != nil {
		return nil, utils.NewInternal("failed to list restaurants", err)
	}
	for _, t := range tenants {
		tenantNames[t.ID] = t.Name
	}

	result := &UserPage{}
	var rows []UserRow
	for _, u := range users {
		userRole, err := ResolveRole(db, u.ID)
		if err != nil {
			return nil, err
		}
		if role != "" && role != "all" && role != userRole {
			continue
		}
		status := models.StatusActive
		var staff models.Staff
		if err := db.Where("user_id = ?", u.ID).Limit(1).Find(&staff).Error; err != nil {
			return nil, utils.NewInternal("failed to load staff", err)
		}
		if staff.ID != "" {
			status = staff.Status
		}
		if status == models.StatusActive {
			result.ActiveUsers++
		}
		name, ok := tenantNames[u.TenantID]
		if !ok {
			name = "N/A"
		}
		rows = append(rows, UserRow{
			UserID:     u.ID,
			Name:       u.FullName,
			Email:      u.Email,
			Role:       userRole,
			TenantName: name,
			Status:     status,
			CreatedAt:  u.CreatedAt.Format("02/01/2006"),
		})
	}

	total := int64(len(rows))
	end := offset + limit
	if offset > len(rows) {
		offset = len(rows)
	}
	if end > len(rows) {
		end = len(rows)
	}
	result.Page = newPage(rows[offset:end], total, page, limit)
	return result, nil
}

// SetUserStatus locks or unlocks a staff account. Owners and customers carry no status.
func (s *AdminService) SetUserStatus(ctx context.Context, userID, status string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := first(tx, &user, userID, "User"); err != nil {
			return err
		}
		return tx.Model(&models.Staff{}).Where("user_id = ?", userID).Update("status", status).Error
	})
}

func (s *AdminService) SetRestaurantStatus(ctx context.Context, tenantID, status string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tenant models.Tenant
		if err := first(tx, &tenant, tenantID, "Restaurant"); err != nil {
			return err
		}
		return tx.Model(&tenant).Update("status", status).Error
	})
}

// UpdateRestaurant renames a tenant and edits its owner account.
func (s *AdminService) UpdateRestaurant(ctx context.Context, tenantID string, in RestaurantUpdate) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tenant models.Tenant
		if err := first(tx, &tenant, tenantID, "Restaurant"); err != nil {
			return err
		}
		if in.TenantName != nil {
			if err := tx.Model(&tenant).Update("name", *in.TenantName).Error; err != nil {
				return err
			}
		}
		if in.OwnerName == nil && in.OwnerEmail == nil {
			return nil
		}

		owner, ok := s.owner(tx, tenantID)
		if !ok {
			return nil
		}
		updates := map[string]interface{}{}
		if in.OwnerName != nil {
			updates["full_name"] = *in.OwnerName
		}
		if in.OwnerEmail != nil {
			email := strings.ToLower(strings.TrimSpace(*in.OwnerEmail))
			var count int64
			if err := tx.Model(&models.User{}).Where("email = ? AND id <> ?", email, owner.ID).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return utils.NewValidation("Email already in use by another user")
			}
			updates["email"] = email
		}
		return tx.Model(owner).Updates(updates).Error
	})
	return asAppError("failed to update restaurant", err)
}

// DeleteRestaurant removes a tenant and everything it owns. Loyalty entries of
// customers outside the tenant lose their bill reference but are kept.
func (s *AdminService) DeleteRestaurant(ctx context.Context, tenantID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tenant models.Tenant
		if err := first(tx, &tenant, tenantID, "Restaurant"); err != nil {
			return err
		}

		branchIDs := tx.Model(&models.Branch{}).Select("id").Where("tenant_id = ?", tenantID)
		tableIDs := tx.Model(&models.DiningTable{}).Select("id").Where("branch_id IN (?)", branchIDs)
		sessionIDs := tx.Model(&models.Session{}).Select("id").Where("table_id IN (?)", tableIDs)
		orderIDs := tx.Model(&models.Order{}).Select("id").Where("session_id IN (?)", sessionIDs)
		billIDs := tx.Model(&models.Bill{}).Select("id").Where("session_id IN (?)", sessionIDs)
		userIDs := tx.Model(&models.User{}).Select("id").Where("tenant_id = ?", tenantID)
		customerIDs := tx.Model(&models.Customer{}).Select("id").Where("user_id IN (?)", userIDs)

		steps := []struct {
			name string
			run  func() error
		}{
			{"point bill refs", func() error {
				return tx.Model(&models.PointTransaction{}).Where("bill_id IN (?)", billIDs).Update("bill_id", nil).Error
			}},
			{"order items", func() error {
				return tx.Where("order_id IN (?)", orderIDs).Delete(&models.OrderItem{}).Error
			}},
			{"orders", func() error { return tx.Where("session_id IN (?)", sessionIDs).Delete(&models.Order{}).Error }},
			{"bills", func() error { return tx.Where("session_id IN (?)", sessionIDs).Delete(&models.Bill{}).Error }},
			{"sessions", func() error { return tx.Where("table_id IN (?)", tableIDs).Delete(&models.Session{}).Error }},
			{"qr codes", func() error { return tx.Where("table_id IN (?)", tableIDs).Delete(&models.QRCode{}).Error }},
			{"tables", func() error { return tx.Where("branch_id IN (?)", branchIDs).Delete(&models.DiningTable{}).Error }},
			{"menu items", func() error { return tx.Where("branch_id IN (?)", branchIDs).Delete(&models.MenuItem{}).Error }},
			{"categories", func() error { return tx.Where("tenant_id = ?", tenantID).Delete(&models.Category{}).Error }},
			{"staff", func() error {
				return tx.Where("branch_id IN (?) OR user_id IN (?)", branchIDs, userIDs).Delete(&models.Staff{}).Error
			}},
			{"customer sessions", func() error {
				return tx.Model(&models.Session{}).Where("customer_id IN (?)", customerIDs).Update("customer_id", nil).Error
			}},
			{"point transactions", func() error {
				return tx.Where("customer_id IN (?)", customerIDs).Delete(&models.PointTransaction{}).Error
			}},
			{"customers", func() error { return tx.Where("user_id IN (?)", userIDs).Delete(&models.Customer{}).Error }},
			{"users", func() error { return tx.Where("tenant_id = ?", tenantID).Delete(&models.User{}).Error }},
			{"branches", func() error { return tx.Where("tenant_id = ?", tenantID).Delete(&models.Branch{}).Error }},
			{"tenant", func() error { return tx.Delete(&tenant).Error }},
		}
		for _, step := range steps {
			if err := step.run(); err != nil {
				return utils.NewInternal("failed to delete "+step.name, err)
			}
		}
		return nil
	})
	if err != nil {
		return asAppError("failed to delete restaurant", err)
	}
	utils.InfoLogger.WithField("tenant", tenantID).Info("Restaurant deleted")
	return nil
}

// UpdateUser edits a user's name and swaps their role rows. Staff and chef
// accounts attach to the first branch of the user's tenant.
func (s *AdminService) UpdateUser(ctx context.Context, userID string, in UserUpdate) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := first(tx, &user, userID, "User"); err != nil {
			return err
		}
		if in.FullName != nil {
			if err := tx.Model(&user).Update("full_name", *in.FullName).Error; err != nil {
				return err
			}
		}
		if in.Role == nil {
			return nil
		}

		current, err := ResolveRole(tx, userID)
		if err != nil {
			return err
		}
		if current == *in.Role {
			return nil
		}

		switch current {
		case models.RoleStaff, models.RoleChef:
			if err := tx.Where("user_id = ?", userID).Delete(&models.Staff{}).Error; err != nil {
				return err
			}
		case models.RoleCustomer:
			if err := deleteCustomer(tx, userID); err != nil {
				return err
			}
		}

		switch *in.Role {
		case models.RoleStaff, models.RoleChef:
			var branch models.Branch
			if err := tx.Where("tenant_id = ?", user.TenantID).Order("created_at ASC").Limit(1).Find(&branch).Error; err != nil {
				return err
			}
			if branch.ID == "" {
				return utils.NewConflict("Restaurant has no branch to attach %s to", *in.Role)
			}
			position := "Staff"
			if *in.Role == models.RoleChef {
				position = models.PositionChef
			}
			return tx.Create(&models.Staff{UserID: userID, BranchID: branch.ID, Position: position, Status: models.StatusActive}).Error
		case models.RoleCustomer:
			return tx.Create(&models.Customer{UserID: userID, PointsBalance: decimal.Zero}).Error
		}
		return nil
	})
	if err != nil {
		return asAppError("failed to update user", err)
	}
	utils.InfoLogger.WithFields(logrus.Fields{"user": userID}).Info("User updated")
	return nil
}

func (s *AdminService) DeleteUser(ctx context.Context, userID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := first(tx, &user, userID, "User"); err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Staff{}).Error; err != nil {
			return err
		}
		if err := deleteCustomer(tx, userID); err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
	return asAppError("failed to delete user", err)
}

// deleteCustomer removes a user's customer row and ledger, detaching their sessions.
func deleteCustomer(tx *gorm.DB, userID string) error {
	customerIDs := tx.Model(&models.Customer{}).Select("id").Where("user_id = ?", userID)
	if err := tx.Model(&models.Session{}).Where("customer_id IN (?)", customerIDs).Update("customer_id", nil).Error; err != nil {
		return err
	}
	if err := tx.Where("customer_id IN (?)", customerIDs).Delete(&models.PointTransaction{}).Error; err != nil {
		return err
	}
	return tx.Where("user_id = ?", userID).Delete(&models.Customer{}).Error
}

// owner is the first user registered under a tenant.
func (s *AdminService) owner(db *gorm.DB, tenantID string) (*models.User, bool) {
	var owner models.User
	if err := db.Where("tenant_id = ?", tenantID).Order("created_at ASC").Limit(1).Find(&owner).Error; err != nil || owner.ID == "" {
		return nil, false
	}
	return &owner, true
}
