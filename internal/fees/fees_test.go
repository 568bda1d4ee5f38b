package fees

import (
	"testing"
	"time"

	"github.com/bigkaa/lms-client/internal/domain/model"
)

var due = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func TestHoursOverdue(t *testing.T) {
	tests := []struct {
		name string
		asOf time.Time
		want int
	}{
		{"не просрочено", due.Add(-time.Hour), 0},
		{"ровно срок", due, 0},
		{"59 минут", due.Add(59 * time.Minute), 0},
		{"61 минута", due.Add(61 * time.Minute), 1},
		{"3.5 часа", due.Add(3*time.Hour + 30*time.Minute), 3},
		{"сутки", due.Add(24 * time.Hour), 24},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HoursOverdue(due, tt.asOf); got != tt.want {
				t.Errorf("ожидалось %d часов, получено %d", tt.want, got)
			}
		})
	}
}

func TestCurrentFee(t *testing.T) {
	tests := []struct {
		name string
		asOf time.Time
		want float64
	}{
		{"ровно срок — только база", due, 5},
		{"до срока часы прижаты к нулю", due.Add(-time.Minute), 5},
		{"59 минут — только база", due.Add(59 * time.Minute), 5},
		{"61 минута", due.Add(61 * time.Minute), 6},
		{"3.5 часа", due.Add(3*time.Hour + 30*time.Minute), 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CurrentFee(due, tt.asOf); got != tt.want {
				t.Errorf("ожидался штраф %.2f, получен %.2f", tt.want, got)
			}
		})
	}
}

// Монотонность: штраф никогда не убывает со временем.
func TestCurrentFeeMonotonic(t *testing.T) {
	prev := 0.0
	for m := 0; m <= 10*60; m += 7 {
		fee := CurrentFee(due, due.Add(time.Duration(m)*time.Minute))
		if fee < prev {
			t.Fatalf("штраф уменьшился: %.2f после %.2f на минуте %d", fee, prev, m)
		}
		prev = fee
	}
}

func TestDisplayFee(t *testing.T) {
	returned := due.Add(10 * time.Hour)

	t.Run("возвращённый заём показывает FeeApplied", func(t *testing.T) {
		b := &model.Borrow{DueDate: due, ReturnedAt: &returned, FeeApplied: 15}
		// Оценка на этот момент была бы 5+10=15, но важен именно
		// серверный FeeApplied: проверяем с расхождением
		b.FeeApplied = 42
		if got := DisplayFee(b, returned.Add(100*time.Hour)); got != 42 {
			t.Errorf("ожидался зафиксированный штраф 42, получен %.2f", got)
		}
	})

	t.Run("возвращённый вовремя — нулевая FeeApplied", func(t *testing.T) {
		early := due.Add(-time.Hour)
		b := &model.Borrow{DueDate: due, ReturnedAt: &early, FeeApplied: 0}
		if got := DisplayFee(b, due.Add(50*time.Hour)); got != 0 {
			t.Errorf("ожидался штраф 0, получен %.2f", got)
		}
	})

	t.Run("активный просроченный — живая оценка", func(t *testing.T) {
		b := &model.Borrow{DueDate: due}
		if got := DisplayFee(b, due.Add(2*time.Hour)); got != 7 {
			t.Errorf("ожидался штраф 7, получен %.2f", got)
		}
	})

	t.Run("активный непросроченный — 0", func(t *testing.T) {
		b := &model.Borrow{DueDate: due}
		if got := DisplayFee(b, due.Add(-time.Minute)); got != 0 {
			t.Errorf("ожидался штраф 0, получен %.2f", got)
		}
	})
}
