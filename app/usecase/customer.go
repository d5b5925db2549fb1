package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"backoffice-service/app/domain"
	"backoffice-service/pkg"

	"github.com/shopspring/decimal"
)

type customerUsecase struct {
	customerRepo domain.CustomerRepository
	addressRepo  domain.AddressRepository
}

func NewCustomerUsecase(customerRepo domain.CustomerRepository, addressRepo domain.AddressRepository) domain.CustomerUsecase {
	return &customerUsecase{customerRepo, addressRepo}
}

func (u *customerUsecase) Create(ctx context.Context, req domain.CustomerCreateRequest) (*domain.Customer, error) {
	hash, err := pkg.HashPassword(req.Password)
	if err != nil {
		slog.ErrorContext(ctx, "[customerUsecase] Create", "hashPassword", err)
		return nil, err
	}

	customer := &domain.Customer{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: hash,
		Status:       domain.CustomerStatusActive,
	}

	if err := u.customerRepo.Create(ctx, customer); err != nil {
		slog.ErrorContext(ctx, "[customerUsecase] Create", "createCustomer", err)
		return nil, err
	}

	return customer, nil
}

func (u *customerUsecase) GetByID(ctx context.Context, id int64) (domain.Customer, error) {
	return u.customerRepo.GetByID(ctx, id)
}

func (u *customerUsecase) List(ctx context.Context) ([]domain.Customer, error) {
	return u.customerRepo.List(ctx)
}

func (u *customerUsecase) HasOrders(ctx context.Context, id int64) (bool, error) {
	if _, err := u.customerRepo.GetByID(ctx, id); err != nil {
		return false, err
	}
	return u.customerRepo.HasOrders(ctx, id)
}

func (u *customerUsecase) LoyaltyPoints(ctx context.Context, id int64) (domain.LoyaltySummary, error) {
	customer, err := u.customerRepo.GetByID(ctx, id)
	if err != nil {
		return domain.LoyaltySummary{}, err
	}

	spend, err := u.customerRepo.CompletedOrderSpend(ctx, id)
	if err != nil {
		slog.ErrorContext(ctx, "[customerUsecase] LoyaltyPoints", "completedOrderSpend", err)
		return domain.LoyaltySummary{}, err
	}

	return domain.LoyaltySummary{
		CustomerID: id,
		FullName:   fmt.Sprintf("%s %s", customer.FirstName, customer.LastName),
		Points:     spend.Div(decimal.NewFromInt(10)).Floor().IntPart(),
	}, nil
}

func (u *customerUsecase) CreateAddress(ctx context.Context, req domain.AddressCreateRequest) (*domain.Address, error) {
	if _, err := u.customerRepo.GetByID(ctx, req.CustomerID); err != nil {
		return nil, fmt.Errorf("customer %d: %w", req.CustomerID, err)
	}

	address := &domain.Address{
		CustomerID: req.CustomerID,
		Line1:      req.Line1,
		City:       req.City,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		Status:     "active",
	}

	if err := u.addressRepo.Create(ctx, address); err != nil {
		slog.ErrorContext(ctx, "[customerUsecase] CreateAddress", "createAddress", err)
		return nil, err
	}

	return address, nil
}

func (u *customerUsecase) ListAddresses(ctx context.Context, customerID int64) ([]domain.Address, error) {
	return u.addressRepo.ListByCustomerID(ctx, customerID)
}
