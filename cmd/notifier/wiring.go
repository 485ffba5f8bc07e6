package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"absence_notifier/internal/app"
	"absence_notifier/internal/domain/attendance"
	"absence_notifier/internal/domain/notification"
	"absence_notifier/internal/domain/operator"
	"absence_notifier/internal/infra/config"
	idb "absence_notifier/internal/infra/database"
	"absence_notifier/internal/infra/docstore"
	"absence_notifier/internal/infra/httpapi"
	"absence_notifier/internal/infra/logger"
	"absence_notifier/internal/infra/memstore"
	"absence_notifier/internal/infra/sms"
	"absence_notifier/internal/infra/telegram"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

const gatewayHTTPTimeout = 30 * time.Second

// storeSet is the persistence backend selected by STORE_DRIVER.
type storeSet struct {
	attendance      attendance.Repository
	reconciliations notification.Repository
	pinger          httpapi.Pinger
	close           func() error
}

func (s storeSet) Ping(ctx context.Context) error { return s.pinger.Ping(ctx) }

type application struct {
	service *app.ReconciliationService
	store   storeSet
	bot     *telebot.Bot
}

func (a *application) Close() {
	if err := a.store.close(); err != nil {
		logger.Component("main").WithError(err).Warn("Failed to close store")
	}
}

// buildApplication wires the store, the gateway client and the operator channel.
// polling starts the bot in long-poll mode for chat commands.
func buildApplication(ctx context.Context, cfg *config.AppConfig, polling bool) (*application, error) {
	mainLogger := logger.Component("main")

	store, err := openStore(ctx, cfg, mainLogger)
	if err != nil {
		return nil, err
	}

	gateway := sms.NewClient(sms.Config{
		TemplateURL: cfg.SMS.GatewayURL,
		TextURL:     cfg.SMS.TextGatewayURL,
		APIKey:      cfg.SMS.APIKey,
		Template:    cfg.SMS.Template,
		TemplateID:  cfg.SMS.TemplateID,
	}, &http.Client{Timeout: gatewayHTTPTimeout})

	var notifier operator.Notifier = operator.Nop{}
	var bot *telebot.Bot
	if cfg.TelegramEnabled() {
		bot, err = newBot(cfg, polling)
		if err != nil {
			_ = store.close()
			return nil, err
		}
		notifier = telegram.NewTelebotAdapter(bot, cfg.AdminTelegramID)
		mainLogger.Info("Operator notices go to the admin Telegram chat")
	}

	aggregator := app.NewAggregator(store.attendance, logger.Component("aggregator"))
	dispatcher := app.NewDispatcher(gateway, cfg.SMS.OperatorPhones, logger.Component("dispatcher"))
	service := app.NewReconciliationService(aggregator, dispatcher, store.reconciliations, notifier, logger.Component("reconciliation"))

	return &application{service: service, store: store, bot: bot}, nil
}

func openStore(ctx context.Context, cfg *config.AppConfig, log *logrus.Entry) (storeSet, error) {
	switch cfg.StoreDriver {
	case config.StorePostgres:
		db, err := idb.NewPostgresConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			return storeSet{}, fmt.Errorf("could not connect to database: %w", err)
		}
		if err := idb.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return storeSet{}, err
		}
		log.Info("Database connection established successfully")
		reconciliations := idb.NewPostgresReconciliationRepository(db)
		return storeSet{
			attendance:      idb.NewPostgresAttendanceRepository(db),
			reconciliations: reconciliations,
			pinger:          reconciliations,
			close:           db.Close,
		}, nil

	case config.StoreMemory:
		log.Warn("Using the in-memory store: nothing is persisted across restarts")
		store := memstore.New()
		return storeSet{attendance: store, reconciliations: store, pinger: store, close: store.Close}, nil

	default:
		client, err := docstore.NewClient(ctx, docstore.ClientConfig{
			ProjectID:       cfg.FirebaseProjectID,
			CredentialsFile: cfg.FirebaseCredentialsFile,
			CredentialsJSON: cfg.FirebaseCredentialsJSON,
		})
		if err != nil {
			return storeSet{}, fmt.Errorf("could not connect to firestore: %w", err)
		}
		log.Info("Firestore client initialized")
		repo := docstore.NewRepository(client)
		return storeSet{attendance: repo, reconciliations: repo, pinger: repo, close: repo.Close}, nil
	}
}

func newBot(cfg *config.AppConfig, polling bool) (*telebot.Bot, error) {
	botLogger := logger.Component("telegram")
	pref := telebot.Settings{
		Token:   cfg.TelegramToken,
		Offline: !polling,
		OnError: func(err error, c telebot.Context) {
			entry := botLogger.WithError(err)
			if c != nil && c.Sender() != nil {
				entry = entry.WithField("sender_id", c.Sender().ID)
			}
			entry.Error("Telegram handler error")
		},
	}
	if polling {
		pref.Poller = &telebot.LongPoller{Timeout: 10 * time.Second}
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("could not create Telegram bot: %w", err)
	}
	return bot, nil
}
