package logger

import "log/slog"

// Error records err under "error". A nil error yields an empty Attr, which
// slog drops.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

func UserID(id string) slog.Attr {
	return slog.String("user_id", id)
}

func TransactionID(id string) slog.Attr {
	return slog.String("transaction_id", id)
}

func PlanID(id string) slog.Attr {
	return slog.String("plan_id", id)
}

// Status records a subscription or provider status.
func Status(s string) slog.Attr {
	return slog.String("status", s)
}

// Table records the name of a data table touched by an operation.
func Table(name string) slog.Attr {
	return slog.String("table", name)
}

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Event(name string) slog.Attr {
	return slog.String("event", name)
}
