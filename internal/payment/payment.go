package payment

import (
	"fmt"

	"go.uber.org/zap"
)

// Method 支付方式，协调器只依赖这一个窄接口
type Method interface {
	// Pay 收取非负金额，返回错误表示支付失败
	Pay(amount float64) error
}

// 支持的支付方式名称
const (
	KindCash = "cash"
	KindUPI  = "upi"
	KindCard = "card"
)

// New 按名称创建支付方式
func New(kind string, logger *zap.Logger) (Method, error) {
	switch kind {
	case KindCash:
		return &CashPayment{logger: logger}, nil
	case KindUPI:
		return &UPIPayment{logger: logger}, nil
	case KindCard:
		return &CardPayment{logger: logger}, nil
	}
	return nil, fmt.Errorf("%s is not a supported payment method", kind)
}

// CashPayment 现金支付
type CashPayment struct {
	logger *zap.Logger
}

// Pay 实现 Method
func (p *CashPayment) Pay(amount float64) error {
	if amount < 0 {
		return fmt.Errorf("invalid amount: %v", amount)
	}
	p.logger.Info("Paid in cash", zap.Float64("amount", amount))
	return nil
}

// UPIPayment UPI 支付
type UPIPayment struct {
	logger *zap.Logger
}

// Pay 实现 Method
func (p *UPIPayment) Pay(amount float64) error {
	if amount < 0 {
		return fmt.Errorf("invalid amount: %v", amount)
	}
	p.logger.Info("Paid via UPI", zap.Float64("amount", amount))
	return nil
}

// CardPayment 银行卡支付
type CardPayment struct {
	logger *zap.Logger
}

// Pay 实现 Method
func (p *CardPayment) Pay(amount float64) error {
	if amount < 0 {
		return fmt.Errorf("invalid amount: %v", amount)
	}
	p.logger.Info("Paid via card", zap.Float64("amount", amount))
	return nil
}
