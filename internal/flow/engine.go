// The collection state machine. One engine instance serves every user;
// per-user state lives in the session registry.
package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-cvbot-backend/internal/i18n"
	"go-cvbot-backend/internal/models"
	"go-cvbot-backend/internal/session"
	"go-cvbot-backend/internal/store"
	"go-cvbot-backend/internal/transport"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProofSubmitter takes over once the payment stage has accepted a file.
// Implemented by the review handoff.
type ProofSubmitter interface {
	SubmitProof(ctx context.Context, sess *session.Session, from transport.Sender, file transport.File) error
}

type Engine struct {
	log         *zap.Logger
	tr          transport.Transport
	profiles    store.ProfileStore
	orders      store.OrderStore
	reg         *session.Registry
	proofs      ProofSubmitter
	maxFileSize int64
}

func NewEngine(log *zap.Logger, tr transport.Transport, profiles store.ProfileStore, orders store.OrderStore, reg *session.Registry, proofs ProofSubmitter, maxFileSize int64) *Engine {
	return &Engine{
		log:         log,
		tr:          tr,
		profiles:    profiles,
		orders:      orders,
		reg:         reg,
		proofs:      proofs,
		maxFileSize: maxFileSize,
	}
}

func isSkip(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), "skip")
}

// sendFileError surfaces an upload violation; the size message carries the
// configured limit rather than a hardcoded number.
func (e *Engine) sendFileError(ctx context.Context, sess *session.Session, key string) error {
	text := i18n.T(sess.Locale(), key)
	if key == "file_too_large" {
		text = fmt.Sprintf(text, e.maxFileSize/(1024*1024))
	}
	return e.tr.SendText(ctx, sess.ChatID, text)
}

func (e *Engine) send(ctx context.Context, sess *session.Session, key string, buttons ...transport.Button) error {
	return e.tr.SendText(ctx, sess.ChatID, i18n.T(sess.Locale(), key), buttons...)
}

// HandleStart begins (or restarts) the conversation at locale selection.
// Already-collected session data survives a stray /start.
func (e *Engine) HandleStart(ctx context.Context, from transport.Sender) error {
	sess := e.reg.GetOrCreate(from.UserID, from.ChatID)
	sess.Stage = session.StageSelectLocale
	return e.send(ctx, sess, "choose_locale",
		transport.Button{Label: "English", Action: transport.EncodeAction("locale", "en")},
		transport.Button{Label: "አማርኛ", Action: transport.EncodeAction("locale", "am")},
	)
}

// HandleCancel destroys the session outright, discarding unsaved progress.
func (e *Engine) HandleCancel(ctx context.Context, from transport.Sender) error {
	locale := i18n.DefaultLocale
	if sess := e.reg.Get(from.UserID); sess != nil {
		locale = sess.Locale()
	}
	e.reg.Destroy(from.UserID)
	return e.tr.SendText(ctx, from.ChatID, i18n.T(locale, "cancelled"))
}

func (e *Engine) HandleHelp(ctx context.Context, from transport.Sender) error {
	locale := i18n.DefaultLocale
	if sess := e.reg.Get(from.UserID); sess != nil {
		locale = sess.Locale()
	}
	return e.tr.SendText(ctx, from.ChatID, i18n.T(locale, "help"))
}

// HandleText feeds one user message into the machine.
func (e *Engine) HandleText(ctx context.Context, from transport.Sender, text string) error {
	sess := e.reg.Get(from.UserID)
	if sess == nil {
		return e.HandleStart(ctx, from)
	}

	switch sess.Stage {
	case session.StagePersonalInfo:
		return e.handleLinear(ctx, sess, personalFields, text, e.beginContactInfo)
	case session.StageContactInfo:
		return e.handleLinear(ctx, sess, contactFields, text, e.beginProfileImage)
	case session.StageProfileImage:
		if isSkip(text) {
			return e.beginSection(ctx, sess, session.StageWorkExperience)
		}
		return e.send(ctx, sess, "profile_image_prompt")
	case session.StageCareerObjective:
		// single free-text block, always exactly one element
		sess.Sections[models.KindCareerObjective] = []models.Fields{{"summaryText": strings.TrimSpace(text)}}
		if sess.FromMenu {
			return e.backToMenu(ctx, sess)
		}
		return e.beginSection(ctx, sess, session.StageCertifications)
	case session.StageActivities:
		sess.Sections[models.KindOtherActivity] = append(sess.Sections[models.KindOtherActivity],
			models.Fields{"activityType": "Other", "description": strings.TrimSpace(text)})
		if sess.FromMenu {
			return e.backToMenu(ctx, sess)
		}
		sess.Stage = session.StageConfirm
		return e.sendSummary(ctx, sess)
	case session.StageConfirm:
		return e.sendSummary(ctx, sess)
	case session.StagePayment:
		// media stage: free text re-prompts the upload instructions
		return e.send(ctx, sess, "awaiting_file")
	case session.StageAwaitingDecision:
		return e.send(ctx, sess, "awaiting_decision")
	default:
		if sec := sectionByStage(sess.Stage); sec != nil {
			return e.handleRepeat(ctx, sess, sec, text)
		}
		return e.promptStage(ctx, sess)
	}
}

// handleLinear advances a fixed field list one message at a time; reaching
// the end hands off to the stage's successor.
func (e *Engine) handleLinear(ctx context.Context, sess *session.Session, fields []fieldSpec, text string, advance func(context.Context, *session.Session) error) error {
	f := fields[sess.FieldIdx]
	if f.optional && isSkip(text) {
		delete(sess.Candidate, f.key)
	} else {
		sess.Candidate[f.key] = strings.TrimSpace(text)
	}

	sess.FieldIdx++
	if sess.FieldIdx < len(fields) {
		return e.send(ctx, sess, fields[sess.FieldIdx].prompt)
	}
	sess.FieldIdx = 0
	if sess.FromMenu {
		return e.backToMenu(ctx, sess)
	}
	return advance(ctx, sess)
}

// handleRepeat fills the scratch record field by field; a completed record
// is appended to its section and the scratch cleared before the user picks
// add-another or continue.
func (e *Engine) handleRepeat(ctx context.Context, sess *session.Session, sec *sectionSpec, text string) error {
	f := sec.fields[sess.FieldIdx]
	if !(f.optional && isSkip(text)) {
		sess.Scratch[f.key] = strings.TrimSpace(text)
	}

	sess.FieldIdx++
	if sess.FieldIdx < len(sec.fields) {
		return e.send(ctx, sess, sec.fields[sess.FieldIdx].prompt)
	}

	sess.Sections[sec.kind] = append(sess.Sections[sec.kind], sess.Scratch)
	sess.ClearScratch()

	return e.send(ctx, sess, "added."+string(sec.kind),
		transport.Button{Label: i18n.T(sess.Locale(), "btn_add_another"), Action: transport.EncodeAction("more", string(sec.kind))},
		transport.Button{Label: i18n.T(sess.Locale(), "btn_continue"), Action: transport.EncodeAction("next", string(sec.kind))},
	)
}

// HandleCallback processes a flow button press.
func (e *Engine) HandleCallback(ctx context.Context, from transport.Sender, tag string) error {
	sess := e.reg.GetOrCreate(from.UserID, from.ChatID)
	kind, args := transport.DecodeAction(tag)

	switch kind {
	case "locale":
		if len(args) == 0 {
			return e.promptStage(ctx, sess)
		}
		sess.SetLocale(i18n.Normalize(args[0]))
		return e.afterLocale(ctx, sess)

	case "start":
		if len(args) > 0 && args[0] == "update" {
			if err := e.loadProfile(ctx, sess); err != nil {
				return err
			}
			sess.Stage = session.StageStartChoice
			return e.sendMenu(ctx, sess)
		}
		sess.ResetData()
		sess.Stage = session.StagePersonalInfo
		if err := e.send(ctx, sess, "welcome_new"); err != nil {
			return err
		}
		return e.send(ctx, sess, personalFields[0].prompt)

	case "menu":
		if err := e.ensureHydrated(ctx, sess); err != nil {
			return err
		}
		if len(args) == 0 {
			return e.sendMenu(ctx, sess)
		}
		return e.jumpToSection(ctx, sess, args[0])

	case "summary":
		sess.FromMenu = false
		sess.Stage = session.StageConfirm
		return e.sendSummary(ctx, sess)

	case "more":
		if len(args) == 0 {
			return e.promptStage(ctx, sess)
		}
		sec := sectionByKind(models.ChildKind(args[0]))
		if sec == nil {
			return e.promptStage(ctx, sess)
		}
		sess.ClearScratch()
		sess.Stage = sec.stage
		return e.send(ctx, sess, sec.fields[0].prompt)

	case "next":
		if len(args) == 0 {
			return e.promptStage(ctx, sess)
		}
		sec := sectionByKind(models.ChildKind(args[0]))
		if sec == nil {
			return e.promptStage(ctx, sess)
		}
		if sess.FromMenu {
			return e.backToMenu(ctx, sess)
		}
		return e.beginSection(ctx, sess, sec.next)

	case "imgok":
		return e.beginSection(ctx, sess, session.StageWorkExperience)

	case "confirm":
		if err := e.ensureHydrated(ctx, sess); err != nil {
			return err
		}
		if err := e.persist(ctx, sess); err != nil {
			return err
		}
		sess.Stage = session.StagePayment
		return e.send(ctx, sess, "payment_instructions")

	case "editmenu":
		if err := e.ensureHydrated(ctx, sess); err != nil {
			return err
		}
		sess.Stage = session.StageStartChoice
		return e.sendMenu(ctx, sess)
	}

	e.log.Warn("unknown flow action", zap.String("tag", tag), zap.String("user_id", from.UserID))
	return e.promptStage(ctx, sess)
}

// HandleFile feeds an inbound upload into the machine.
func (e *Engine) HandleFile(ctx context.Context, from transport.Sender, file transport.File) error {
	sess := e.reg.Get(from.UserID)
	if sess == nil {
		return e.HandleStart(ctx, from)
	}

	switch sess.Stage {
	case session.StageProfileImage:
		if errKey := validateFile(file, e.maxFileSize); errKey != "" {
			return e.sendFileError(ctx, sess, errKey)
		}
		sess.Candidate["profileFileID"] = file.FileID
		return e.send(ctx, sess, "profile_image_saved",
			transport.Button{Label: i18n.T(sess.Locale(), "btn_continue"), Action: transport.EncodeAction("imgok")})

	case session.StagePayment:
		if errKey := validateFile(file, e.maxFileSize); errKey != "" {
			return e.sendFileError(ctx, sess, errKey)
		}
		if err := e.proofs.SubmitProof(ctx, sess, from, file); err != nil {
			return err
		}
		sess.Stage = session.StageAwaitingDecision
		return nil

	default:
		return e.promptStage(ctx, sess)
	}
}

func (e *Engine) afterLocale(ctx context.Context, sess *session.Session) error {
	cand, err := e.profiles.GetCandidate(ctx, sess.UserID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("profile lookup: %w", err)
	}

	if cand != nil {
		sess.HasProfile = true
		sess.CandidateUID = cand.UID
		sess.Stage = session.StageStartChoice
		return e.send(ctx, sess, "welcome_back",
			transport.Button{Label: i18n.T(sess.Locale(), "btn_update"), Action: transport.EncodeAction("start", "update")},
			transport.Button{Label: i18n.T(sess.Locale(), "btn_new"), Action: transport.EncodeAction("start", "new")},
		)
	}

	// nothing stored, the session is the whole profile
	sess.Hydrated = true
	sess.Stage = session.StagePersonalInfo
	sess.FieldIdx = 0
	if err := e.send(ctx, sess, "welcome_new"); err != nil {
		return err
	}
	return e.send(ctx, sess, personalFields[0].prompt)
}

// ensureHydrated makes sure the session carries the complete stored profile
// before any path that can end in a confirm rewrite. Menu buttons can
// outlive their session (or arrive forged), so reaching the menu is no
// proof the profile was ever loaded.
func (e *Engine) ensureHydrated(ctx context.Context, sess *session.Session) error {
	if sess.Hydrated {
		return nil
	}
	if err := e.loadProfile(ctx, sess); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			sess.Hydrated = true
			return nil
		}
		return err
	}
	return nil
}

func (e *Engine) beginContactInfo(ctx context.Context, sess *session.Session) error {
	sess.Stage = session.StageContactInfo
	return e.send(ctx, sess, contactFields[0].prompt)
}

func (e *Engine) beginProfileImage(ctx context.Context, sess *session.Session) error {
	sess.Stage = session.StageProfileImage
	return e.send(ctx, sess, "profile_image_prompt")
}

// beginSection enters a stage at its first prompt.
func (e *Engine) beginSection(ctx context.Context, sess *session.Session, stage session.Stage) error {
	sess.Stage = stage
	sess.FieldIdx = 0

	switch stage {
	case session.StageCareerObjective:
		return e.send(ctx, sess, "career_objective_prompt")
	case session.StageActivities:
		return e.send(ctx, sess, "activities_prompt")
	case session.StageConfirm:
		return e.sendSummary(ctx, sess)
	}

	if sec := sectionByStage(stage); sec != nil {
		return e.send(ctx, sess, sec.fields[0].prompt)
	}
	return e.promptStage(ctx, sess)
}

// jumpToSection serves the edit menu: the chosen section's sequence and
// scratch are reset before the stage pointer jumps in, so a resubmission
// rebuilds the section from nothing.
func (e *Engine) jumpToSection(ctx context.Context, sess *session.Session, id string) error {
	entry := menuEntryByID(id)
	if entry == nil {
		return e.sendMenu(ctx, sess)
	}

	if entry.kind != "" {
		delete(sess.Sections, entry.kind)
	}
	sess.ClearScratch()
	sess.FieldIdx = 0
	sess.FromMenu = true
	sess.Stage = entry.stage

	switch entry.stage {
	case session.StagePersonalInfo:
		return e.send(ctx, sess, personalFields[0].prompt)
	case session.StageContactInfo:
		return e.send(ctx, sess, contactFields[0].prompt)
	case session.StageCareerObjective:
		return e.send(ctx, sess, "career_objective_prompt")
	case session.StageActivities:
		return e.send(ctx, sess, "activities_prompt")
	}

	if sec := sectionByStage(entry.stage); sec != nil {
		return e.send(ctx, sess, sec.fields[0].prompt)
	}
	return e.sendMenu(ctx, sess)
}

// backToMenu ends a menu-edited section. Edits never spill into the next
// stage of the linear walk, they return to the menu.
func (e *Engine) backToMenu(ctx context.Context, sess *session.Session) error {
	sess.FromMenu = false
	sess.Stage = session.StageStartChoice
	return e.sendMenu(ctx, sess)
}

func (e *Engine) sendMenu(ctx context.Context, sess *session.Session) error {
	locale := sess.Locale()
	buttons := make([]transport.Button, 0, len(menuEntries)+1)
	for _, entry := range menuEntries {
		buttons = append(buttons, transport.Button{
			Label:  i18n.T(locale, entry.labelKey),
			Action: transport.EncodeAction("menu", entry.id),
		})
	}
	buttons = append(buttons, transport.Button{
		Label:  i18n.T(locale, "btn_continue"),
		Action: transport.EncodeAction("summary"),
	})
	return e.tr.SendText(ctx, sess.ChatID, i18n.T(locale, "section_menu"), buttons...)
}

func (e *Engine) sendSummary(ctx context.Context, sess *session.Session) error {
	locale := sess.Locale()
	text := i18n.T(locale, "summary_header") + "\n\n" + BuildSummary(sess)
	return e.tr.SendText(ctx, sess.ChatID, text,
		transport.Button{Label: i18n.T(locale, "btn_confirm"), Action: transport.EncodeAction("confirm")},
		transport.Button{Label: i18n.T(locale, "btn_edit"), Action: transport.EncodeAction("editmenu")},
	)
}

// promptStage re-issues the prompt for wherever the session currently is.
// Used when input arrives in a shape the stage does not expect.
func (e *Engine) promptStage(ctx context.Context, sess *session.Session) error {
	switch sess.Stage {
	case session.StageSelectLocale:
		return e.HandleStart(ctx, transport.Sender{UserID: sess.UserID, ChatID: sess.ChatID})
	case session.StageStartChoice:
		// only a hydrated session may see the menu; otherwise re-offer the
		// update/new choice so the profile gets loaded before any edit
		if sess.Hydrated {
			return e.sendMenu(ctx, sess)
		}
		return e.afterLocale(ctx, sess)
	case session.StagePersonalInfo:
		return e.send(ctx, sess, personalFields[sess.FieldIdx].prompt)
	case session.StageContactInfo:
		return e.send(ctx, sess, contactFields[sess.FieldIdx].prompt)
	case session.StageProfileImage:
		return e.send(ctx, sess, "profile_image_prompt")
	case session.StageCareerObjective:
		return e.send(ctx, sess, "career_objective_prompt")
	case session.StageActivities:
		return e.send(ctx, sess, "activities_prompt")
	case session.StageConfirm:
		return e.sendSummary(ctx, sess)
	case session.StagePayment:
		return e.send(ctx, sess, "awaiting_file")
	case session.StageAwaitingDecision:
		return e.send(ctx, sess, "awaiting_decision")
	}
	if sec := sectionByStage(sess.Stage); sec != nil {
		return e.send(ctx, sess, sec.fields[sess.FieldIdx].prompt)
	}
	return nil
}

// loadProfile pulls the stored candidate and every child sequence into the
// session for the update flow.
func (e *Engine) loadProfile(ctx context.Context, sess *session.Session) error {
	cand, err := e.profiles.GetCandidate(ctx, sess.UserID)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}

	sess.HasProfile = true
	sess.Hydrated = true
	sess.CandidateUID = cand.UID
	sess.Candidate = cand.Fields.Clone()
	sess.Sections = make(map[models.ChildKind][]models.Fields)
	sess.ClearScratch()

	for _, kind := range models.AllChildKinds {
		recs, err := e.profiles.GetChildren(ctx, cand.UID, kind)
		if err != nil {
			return fmt.Errorf("load %s records: %w", kind, err)
		}
		for _, rec := range recs {
			sess.Sections[kind] = append(sess.Sections[kind], rec.Fields.Clone())
		}
	}
	return nil
}

// persist writes the session out on confirmation. Profile and children go
// first; the order is only created once they are durably stored, so a
// failed write never leaves a dangling order.
func (e *Engine) persist(ctx context.Context, sess *session.Session) error {
	now := time.Now()

	cand, err := e.profiles.GetCandidate(ctx, sess.UserID)
	if errors.Is(err, store.ErrNotFound) {
		uid := sess.CandidateUID
		if uid == "" {
			uid = uuid.NewString()
		}
		cand = &models.Candidate{
			UID:            uid,
			TelegramUserID: sess.UserID,
			Fields:         models.Fields{},
			CreatedAt:      now,
		}
	} else if err != nil {
		return fmt.Errorf("persist: %w", err)
	}

	// overwrite only the keys the session actually holds
	cand.Fields.Merge(sess.Candidate)
	cand.LastUpdatedAt = now
	if err := e.profiles.PutCandidate(ctx, cand); err != nil {
		return fmt.Errorf("persist candidate: %w", err)
	}

	for _, kind := range models.AllChildKinds {
		if err := e.profiles.DeleteChildren(ctx, cand.UID, kind); err != nil {
			return fmt.Errorf("persist: %w", err)
		}
		for i, fields := range sess.Sections[kind] {
			rec := models.ChildRecord{
				ID:           uuid.NewString(),
				CandidateUID: cand.UID,
				Kind:         kind,
				Fields:       fields.Clone(),
				// staggered so the created_at sort keeps insertion order
				CreatedAt: now.Add(time.Duration(i) * time.Millisecond),
			}
			if err := e.profiles.PutChild(ctx, &rec); err != nil {
				return fmt.Errorf("persist %s record: %w", kind, err)
			}
		}
	}

	order := models.Order{
		ID:               uuid.NewString(),
		CandidateUID:     cand.UID,
		TelegramUserID:   sess.UserID,
		Status:           models.StatusAwaitingPayment,
		StatusDetails:    "Awaiting payment",
		OrderedAt:        now,
		LastStatusUpdate: now,
	}
	if err := e.orders.PutOrder(ctx, &order); err != nil {
		return fmt.Errorf("persist order: %w", err)
	}

	sess.CandidateUID = cand.UID
	sess.HasProfile = true
	sess.SetOrder(order.ID)

	e.log.Info("submission persisted",
		zap.String("user_id", sess.UserID),
		zap.String("candidate_uid", cand.UID),
		zap.String("order_id", order.ID))
	return nil
}
