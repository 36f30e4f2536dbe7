package models

// All returns every model in migration order.
func All() []interface{} {
	return []interface{}{
		&Tenant{},
		&Branch{},
		&User{},
		&Staff{},
		&Customer{},
		&DiningTable{},
		&QRCode{},
		&Category{},
		&MenuItem{},
		&Session{},
		&Order{},
		&OrderItem{},
		&Bill{},
		&PointTransaction{},
		&AIConfig{},
	}
}
