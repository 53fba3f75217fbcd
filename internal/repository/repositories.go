package repository

import "gorm.io/gorm"

// Repositories 订阅开通涉及的全部仓储
type Repositories struct {
	Catalog      *CatalogRepository
	Schedule     *ScheduleRepository
	Promotion    *PromotionRepository
	Subscription *SubscriptionRepository
	Booking      *BookingRepository
	ChildProfile *ChildProfileRepository
	Invoice      *InvoiceRepository
	Capacity     *CapacityRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Catalog:      NewCatalogRepository(db),
		Schedule:     NewScheduleRepository(db),
		Promotion:    NewPromotionRepository(db),
		Subscription: NewSubscriptionRepository(db),
		Booking:      NewBookingRepository(db),
		ChildProfile: NewChildProfileRepository(db),
		Invoice:      NewInvoiceRepository(db),
		Capacity:     NewCapacityRepository(db),
	}
}
