package models

import "errors"

// 预期结果：调用方必须分支处理，不代表程序缺陷
var (
	ErrLotFull        = errors.New("no spot available")
	ErrTicketNotFound = errors.New("ticket not found")
)

// 程序性错误：说明调用方违反了不变量，不应被吞掉
var (
	ErrSpotOccupied        = errors.New("spot already occupied")
	ErrSpotNotOccupied     = errors.New("spot not occupied")
	ErrTicketAlreadyClosed = errors.New("ticket already closed")
	ErrInvalidInterval     = errors.New("exit time before entry time")
	ErrInvalidVehicleType  = errors.New("invalid vehicle type")
	ErrPaymentFailed       = errors.New("payment failed")
)
