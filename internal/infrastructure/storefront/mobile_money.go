package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/example/ec-storefront/internal/domain/payment"
)

type initiateRequest struct {
	PhoneNumber string      `json:"phoneNumber"`
	Amount      json.Number `json:"amount"`
	Provider    string      `json:"provider"`
}

type initiateReply struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transactionId"`
	Message       string `json:"message"`
}

type statusReply struct {
	Status string `json:"status"`
}

func (c *Client) InitiateMobileMoney(ctx context.Context, req payment.MobileMoneyRequest) (payment.MobileMoneyInitiation, error) {
	data, err := c.do(ctx, http.MethodPost, "/payment/mobile-money/initiate", initiateRequest{
		PhoneNumber: req.Phone,
		Amount:      json.Number(req.Amount.StringFixed(2)),
		Provider:    string(req.Provider),
	})
	if err != nil {
		return payment.MobileMoneyInitiation{}, err
	}

	var body initiateReply
	if err := decode(data, &body); err != nil {
		return payment.MobileMoneyInitiation{}, err
	}
	if body.Success && body.TransactionID == "" {
		return payment.MobileMoneyInitiation{}, fmt.Errorf("%w: success without transaction id", ErrUnexpectedReply)
	}
	return payment.MobileMoneyInitiation{
		Success:       body.Success,
		TransactionID: body.TransactionID,
		Message:       body.Message,
	}, nil
}

func (c *Client) MobileMoneyStatus(ctx context.Context, transactionID string) (payment.ProviderStatus, error) {
	data, err := c.do(ctx, http.MethodGet, "/payment/mobile-money/status/"+escape(transactionID), nil)
	if err != nil {
		return "", err
	}

	var body statusReply
	if err := decode(data, &body); err != nil {
		return "", err
	}
	switch status := payment.ProviderStatus(body.Status); status {
	case payment.ProviderPending, payment.ProviderSuccess, payment.ProviderFailed:
		return status, nil
	default:
		return "", fmt.Errorf("%w: status %q", ErrUnexpectedReply, body.Status)
	}
}
