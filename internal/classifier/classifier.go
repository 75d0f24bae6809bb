package classifier

import (
	"context"
	"errors"
)

// Category ids produced by the classifiers.
const (
	CategoryHardware = 1
	CategorySoftware = 2
	CategoryNetwork  = 3
	CategoryAccount  = 4
)

// ErrUnavailable wraps every failure to obtain a prediction.
var ErrUnavailable = errors.New("classifier unavailable")

// Classifier predicts a category id for a ticket. It is called once per
// ticket creation and is never retried.
type Classifier interface {
	Predict(ctx context.Context, title, description string) (int, error)
}

// Func adapts a plain function to the Classifier interface.
type Func func(ctx context.Context, title, description string) (int, error)

// Predict calls f.
func (f Func) Predict(ctx context.Context, title, description string) (int, error) {
	return f(ctx, title, description)
}

// ValidCategory reports whether id is a known category.
func ValidCategory(id int) bool {
	return id >= CategoryHardware && id <= CategoryAccount
}
