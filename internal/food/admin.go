// Package food реализует таблицу блюд в кабинете заведения: загрузка, создание, редактирование, переключатели и удаление.
package food

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/unieats/internal/domain"
)

// Сообщения, которые видит пользователь.
const (
	MsgLoadError          = "Error loading foods"
	MsgCreated            = "Food created successfully!"
	MsgUpdated            = "Food updated successfully!"
	MsgSaveError          = "Error saving food"
	MsgAvailabilityOK     = "Food availability updated!"
	MsgAvailabilityError  = "Error updating availability"
	MsgFeaturedOK         = "Food featured status updated!"
	MsgFeaturedError      = "Error updating featured status"
	MsgDeleted            = "Food deleted successfully!"
	MsgDeleteError        = "Error deleting food"
	DeleteConfirmQuestion = "Are you sure you want to delete this food item?"
)

// Service: операции бэкенда над блюдами заведения.
type Service interface {
	ListFoods(ctx context.Context) ([]domain.Food, error)
	CreateFood(ctx context.Context, food domain.Food) (domain.Food, error)
	UpdateFood(ctx context.Context, id int64, food domain.Food) (domain.Food, error)
	DeleteFood(ctx context.Context, id int64) error
	ToggleAvailability(ctx context.Context, id int64) error
	ToggleFeatured(ctx context.Context, id int64) error
}

// Admin держит последнюю загруженную таблицу блюд.
// Локально ничего не меняется: после каждой успешной операции таблица перезагружается целиком.
type Admin struct {
	service   Service
	notifier  domain.Notifier
	confirmer domain.Confirmer
	logger    *log.Entry

	mu        sync.Mutex
	foods     []domain.Food
	editingID int64
	observers []func([]domain.Food)
}

// NewAdmin создаёт Admin. confirmer=nil означает, что удаление всегда отклоняется.
func NewAdmin(service Service, notifier domain.Notifier, confirmer domain.Confirmer, logger *log.Entry) *Admin {
	if logger == nil {
		logger = log.New().WithField("component", "food")
	}
	if confirmer == nil {
		confirmer = domain.ConfirmFunc(func(string) bool { return false })
	}
	return &Admin{
		service:   service,
		notifier:  notifier,
		confirmer: confirmer,
		logger:    logger,
	}
}

// OnChange регистрирует обработчик перерисовки таблицы.
func (a *Admin) OnChange(fn func([]domain.Food)) {
	if fn == nil {
		return
	}
	a.mu.Lock()
	a.observers = append(a.observers, fn)
	a.mu.Unlock()
}

// Load загружает блюда текущего заведения.
func (a *Admin) Load(ctx context.Context) error {
	foods, err := a.service.ListFoods(ctx)
	if err != nil {
		a.notifier.Error(MsgLoadError)
		a.logger.WithError(err).Warn("failed to load foods")
		return fmt.Errorf("load foods: %w", err)
	}

	a.mu.Lock()
	a.foods = append([]domain.Food(nil), foods...)
	snapshot := append([]domain.Food(nil), a.foods...)
	observers := make([]func([]domain.Food), len(a.observers))
	copy(observers, a.observers)
	a.mu.Unlock()

	for _, fn := range observers {
		fn(snapshot)
	}
	return nil
}

// Foods возвращает копию таблицы.
func (a *Admin) Foods() []domain.Food {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]domain.Food(nil), a.foods...)
}

// Edit переводит форму в режим редактирования блюда id.
func (a *Admin) Edit(id int64) (Form, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, f := range a.foods {
		if f.ID == id {
			a.editingID = id
			return FormFromFood(f), nil
		}
	}
	return Form{}, fmt.Errorf("%w: id %d", domain.ErrFoodNotFound, id)
}

// EditingID возвращает id редактируемого блюда; ok=false в режиме создания.
func (a *Admin) EditingID() (int64, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.editingID, a.editingID != 0
}

// CancelEdit возвращает форму в режим создания (закрытие модального окна).
func (a *Admin) CancelEdit() {
	a.mu.Lock()
	a.editingID = 0
	a.mu.Unlock()
}

// Save создаёт блюдо или обновляет редактируемое.
func (a *Admin) Save(ctx context.Context, form Form) error {
	editingID, editing := a.EditingID()

	food, err := form.ToFood()
	if err != nil {
		a.notifier.Error(MsgSaveError)
		return fmt.Errorf("save food: %w", err)
	}

	if editing {
		_, err = a.service.UpdateFood(ctx, editingID, food)
	} else {
		_, err = a.service.CreateFood(ctx, food)
	}
	if err != nil {
		a.notifier.Error(MsgSaveError)
		a.logger.WithError(err).WithField("food_id", editingID).Warn("failed to save food")
		return fmt.Errorf("save food: %w", err)
	}

	if editing {
		a.notifier.Success(MsgUpdated)
	} else {
		a.notifier.Success(MsgCreated)
	}
	a.CancelEdit()
	a.reload(ctx)
	return nil
}

// ToggleAvailability переключает доступность блюда.
func (a *Admin) ToggleAvailability(ctx context.Context, id int64) error {
	return a.run(ctx, id, "toggle availability", a.service.ToggleAvailability, MsgAvailabilityOK, MsgAvailabilityError)
}

// ToggleFeatured переключает признак «рекомендуемое».
func (a *Admin) ToggleFeatured(ctx context.Context, id int64) error {
	return a.run(ctx, id, "toggle featured", a.service.ToggleFeatured, MsgFeaturedOK, MsgFeaturedError)
}

// Delete удаляет блюдо после подтверждения пользователем.
func (a *Admin) Delete(ctx context.Context, id int64) error {
	if !a.confirmer.Confirm(DeleteConfirmQuestion) {
		return domain.ErrDeleteNotConfirmed
	}
	return a.run(ctx, id, "delete food", a.service.DeleteFood, MsgDeleted, MsgDeleteError)
}

func (a *Admin) run(ctx context.Context, id int64, action string, call func(context.Context, int64) error, okMsg, errMsg string) error {
	if err := call(ctx, id); err != nil {
		a.notifier.Error(errMsg)
		a.logger.WithError(err).WithField("food_id", id).Warnf("%s failed", action)
		return fmt.Errorf("%s %d: %w", action, id, err)
	}
	a.notifier.Success(okMsg)
	a.reload(ctx)
	return nil
}

// reload ошибку не возвращает: операция уже выполнена, Load сам показал сообщение.
func (a *Admin) reload(ctx context.Context) {
	_ = a.Load(ctx)
}
