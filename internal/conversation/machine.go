package conversation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"trade_assistant/internal/models"
	"trade_assistant/internal/modules/config"
	"trade_assistant/internal/strategy"
	"trade_assistant/pkg/logger"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var digitsRe = regexp.MustCompile(`^\d+$`)

// Market — данные, нужные до старта стратегии.
type Market interface {
	Balances(ctx context.Context) ([]models.Balance, error)
	ListTradableSymbols(ctx context.Context) (map[string]struct{}, error)
}

type RunnerFactory interface {
	Runner(kind models.StrategyType) (strategy.Runner, error)
}

// Notifier отправляет ответ с подсказкой клавиатуры.
type Notifier interface {
	Reply(ctx context.Context, chatID int64, msg string, kb Keyboard) (tgbot.Message, error)
}

// RunTracker считает активные раннеры (для /healthz).
type RunTracker interface {
	AddRunners(delta int64)
}

// Machine — сессии всех чатов и раннеры, запущенные из них.
type Machine struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	seq      uint64

	market   Market
	runners  RunnerFactory
	notifier Notifier
	tracker  RunTracker
	quote    string

	root context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup
}

func NewMachine(cfg *config.Config, market Market, runners RunnerFactory, notifier Notifier, tracker RunTracker) *Machine {
	root, stop := context.WithCancel(context.Background())
	quote := cfg.Strategy.QuoteAsset
	if quote == "" {
		quote = "USDT"
	}
	return &Machine{
		sessions: make(map[int64]*Session),
		market:   market,
		runners:  runners,
		notifier: notifier,
		tracker:  tracker,
		quote:    quote,
		root:     root,
		stop:     stop,
	}
}

// Session возвращает копию текущей сессии чата.
func (m *Machine) Session(chatID int64) (Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[chatID]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// Shutdown отменяет все раннеры и ждёт их завершения.
func (m *Machine) Shutdown(ctx context.Context) error {
	m.stop()
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HandleCommand — /команда без слеша; text — исходный текст сообщения.
func (m *Machine) HandleCommand(ctx context.Context, chatID int64, command, text string) {
	switch command {
	case "start":
		m.reset(chatID)
		m.reply(ctx, chatID, textWelcome, KeyboardRemove)
	case "cancel":
		m.reset(chatID)
		m.reply(ctx, chatID, textTerminated, KeyboardRemove)
	case "my_strategy":
		m.beginMomentum(ctx, chatID)
	case "strong_buy":
		m.beginSignal(ctx, chatID)
	default:
		// незнакомая команда внутри диалога идёт как ввод для текущего шага
		m.HandleText(ctx, chatID, text)
	}
}

// HandleText передаёт ввод обработчику текущего состояния. Невалидный ввод сессию не меняет.
func (m *Machine) HandleText(ctx context.Context, chatID int64, text string) {
	sess, ok := m.Session(chatID)
	if !ok {
		m.reply(ctx, chatID, textUnknown, KeyboardNone)
		return
	}
	text = strings.TrimSpace(text)

	switch sess.State {
	case StateAmountInput:
		amount, ok := parseDigits(text)
		if !ok {
			m.reply(ctx, chatID, textBadAmount, KeyboardNone)
			return
		}
		sess.Fields.Amount = amount
		sess.State = StateConfirmInput
		m.save(sess)
		m.reply(ctx, chatID, textCheck, KeyboardNone)
		m.reply(ctx, chatID, fmt.Sprintf(textChosenAmount, text, m.quote), KeyboardConfirm)

	case StateSymbolInput:
		symbol := strings.ToUpper(text)
		if _, ok := sess.symbols[symbol]; !ok {
			m.reply(ctx, chatID, textBadSymbol, KeyboardNone)
			return
		}
		sess.Fields.Symbol = symbol
		sess.State = StateIntervalInput
		m.save(sess)
		m.reply(ctx, chatID, textChooseInterval, KeyboardIntervals)

	case StateIntervalInput:
		if !models.IsInterval(text) {
			m.reply(ctx, chatID, textBadInterval, KeyboardNone)
			return
		}
		sess.Fields.Interval = text
		sess.State = StateQntyInput
		m.save(sess)
		m.reply(ctx, chatID, textEnterQuantity, KeyboardRemove)

	case StateQntyInput:
		qty, ok := parseDigits(text)
		if !ok {
			m.reply(ctx, chatID, textBadQuantity, KeyboardNone)
			return
		}
		sess.Fields.Quantity = qty
		sess.State = StateConfInput
		m.save(sess)
		m.reply(ctx, chatID, textCheck, KeyboardNone)
		m.reply(ctx, chatID, fmt.Sprintf(textSummary, sess.Fields.Symbol, sess.Fields.Interval, text), KeyboardConfirm)

	case StateConfirmInput, StateConfInput:
		switch text {
		case "confirm":
			m.launch(ctx, sess)
		case "q":
			m.reset(chatID)
			m.reply(ctx, chatID, textStopped, KeyboardRemove)
		default:
			m.reply(ctx, chatID, textBadConfirm, KeyboardNone)
		}

	case StateRunning:
		if text != "q" {
			m.reply(ctx, chatID, textBadRunning, KeyboardNone)
			return
		}
		m.reset(chatID)
		m.reply(ctx, chatID, textStopped, KeyboardRemove)

	default:
		m.reply(ctx, chatID, textUnknown, KeyboardNone)
	}
}

// parseDigits принимает только цифры; число, не влезающее в float64, отбрасывается.
func parseDigits(text string) (float64, bool) {
	if !digitsRe.MatchString(text) {
		return 0, false
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func (m *Machine) beginMomentum(ctx context.Context, chatID int64) {
	m.reset(chatID)
	if !m.showBalances(ctx, chatID) {
		return
	}
	m.save(Session{ChatID: chatID, State: StateAmountInput, Flow: models.StrategyMomentum})
	m.reply(ctx, chatID, fmt.Sprintf(textEnterAmount, m.quote), KeyboardNone)
}

func (m *Machine) beginSignal(ctx context.Context, chatID int64) {
	m.reset(chatID)
	if !m.showBalances(ctx, chatID) {
		return
	}
	symbols, err := m.market.ListTradableSymbols(ctx)
	if err != nil {
		logger.Error("chat %d: list symbols: %v", chatID, err)
		m.reply(ctx, chatID, textFetchFailed, KeyboardNone)
		return
	}
	m.save(Session{ChatID: chatID, State: StateSymbolInput, Flow: models.StrategySignal, symbols: symbols})
	m.reply(ctx, chatID, textEnterSymbol, KeyboardRemove)
}

// showBalances: при false дальше не идём, пользователю уже ответили.
func (m *Machine) showBalances(ctx context.Context, chatID int64) bool {
	balances, err := m.market.Balances(ctx)
	if err != nil {
		logger.Error("chat %d: balances: %v", chatID, err)
		m.reply(ctx, chatID, textFetchFailed, KeyboardNone)
		return false
	}
	if len(balances) == 0 {
		m.reply(ctx, chatID, textNoFunds, KeyboardNone)
		return false
	}

	var b strings.Builder
	b.WriteString(textAssets)
	for _, bal := range balances {
		fmt.Fprintf(&b, "\n\nAsset: %s\nTotal Balance: %v\nLocked balance: %v", bal.Asset, bal.Total, bal.Locked)
	}
	m.reply(ctx, chatID, b.String(), KeyboardNone)
	return true
}

// launch переводит сессию в running и запускает раннер в отдельной горутине.
func (m *Machine) launch(ctx context.Context, sess Session) {
	runner, err := m.runners.Runner(sess.Flow)
	if err != nil {
		logger.Error("chat %d: %v", sess.ChatID, err)
		m.reset(sess.ChatID)
		m.reply(ctx, sess.ChatID, fmt.Sprintf(textFailed, err), KeyboardRemove)
		return
	}

	params := strategy.Params{
		ChatID:   sess.ChatID,
		Amount:   sess.Fields.Amount,
		Symbol:   sess.Fields.Symbol,
		Interval: sess.Fields.Interval,
		Quantity: sess.Fields.Quantity,
	}

	runCtx, cancel := context.WithCancel(m.root)

	m.mu.Lock()
	m.seq++
	sess.runID = m.seq
	sess.cancel = cancel
	sess.State = StateRunning
	s := sess
	m.sessions[sess.ChatID] = &s
	m.mu.Unlock()

	m.reply(ctx, sess.ChatID, textStarting, KeyboardRemove)

	if m.tracker != nil {
		m.tracker.AddRunners(1)
	}
	m.wg.Add(1)
	go func(chatID int64, runID uint64) {
		defer m.wg.Done()
		err := runner.Run(runCtx, params)
		cancel()
		m.finish(chatID, runID, err)
	}(sess.ChatID, sess.runID)
}

func (m *Machine) finish(chatID int64, runID uint64, err error) {
	m.mu.Lock()
	if s, ok := m.sessions[chatID]; ok && s.runID == runID {
		delete(m.sessions, chatID)
	}
	m.mu.Unlock()

	if m.tracker != nil {
		m.tracker.AddRunners(-1)
	}

	// ответ пользователю идёт не из апдейта, а из раннера
	ctx := context.Background()
	switch {
	case err == nil:
		logger.Info("chat %d: runner finished", chatID)
		m.reply(ctx, chatID, textFinished, KeyboardNone)
	case errors.Is(err, context.Canceled):
		logger.Info("chat %d: runner cancelled", chatID)
	case strategy.AlreadyReported(err):
		logger.Warn("chat %d: runner stopped: %v", chatID, err)
	default:
		logger.Error("chat %d: runner failed: %v", chatID, err)
		m.reply(ctx, chatID, fmt.Sprintf(textFailed, err), KeyboardNone)
	}
}

func (m *Machine) save(sess Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ChatID] = &sess
}

// reset удаляет сессию и отменяет её раннер, если он был.
func (m *Machine) reset(chatID int64) {
	m.mu.Lock()
	s, ok := m.sessions[chatID]
	delete(m.sessions, chatID)
	m.mu.Unlock()

	if ok && s.cancel != nil {
		s.cancel()
	}
}

func (m *Machine) reply(ctx context.Context, chatID int64, msg string, kb Keyboard) {
	if _, err := m.notifier.Reply(ctx, chatID, msg, kb); err != nil {
		logger.Warn("chat %d: reply: %v", chatID, err)
	}
}
