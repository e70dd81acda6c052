package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"fiesta/internal/models/db_models"
	"fiesta/internal/payments"
	"fiesta/internal/platform"
	"fiesta/internal/txprocess"
	"fiesta/pkg/utils"
)

func newTestMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) NowUTC(ctx context.Context) time.Time { return c.now }

// fakeGateway is an in-memory payment provider. Tests seed intents and
// balances directly and assert on the recorded calls.
type fakeGateway struct {
	mu sync.Mutex

	intents   map[string]*payments.Intent
	transfers []*payments.Transfer
	balances  map[string]*payments.BalanceTx
	sessions  map[string]*payments.VerificationSession

	createIntentCalls   int
	createTransferCalls int
	captureCalls        []int64
	reversals           []*payments.Reversal
	refunds             []*payments.Refund
	refundAmounts       []int64
	canceledIntents     []string
	lastIntentInput     payments.CreateIntentInput

	captureErr  error
	transferErr error
	reverseErr  error
	refundErr   error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		intents:  map[string]*payments.Intent{},
		balances: map[string]*payments.BalanceTx{},
		sessions: map[string]*payments.VerificationSession{},
	}
}

func (g *fakeGateway) CreateIntent(ctx context.Context, in payments.CreateIntentInput) (*payments.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.createIntentCalls++
	g.lastIntentInput = in
	status := payments.IntentStatusSucceeded
	if in.CaptureMethod == payments.CaptureManual {
		status = payments.IntentStatusRequiresCapture
	}
	intent := &payments.Intent{
		ID:            fmt.Sprintf("pi_%d", g.createIntentCalls),
		ClientSecret:  fmt.Sprintf("pi_%d_secret", g.createIntentCalls),
		Status:        status,
		AmountMinor:   in.AmountMinor,
		Currency:      in.Currency,
		TransferGroup: in.TransferGroup,
		Metadata:      in.Metadata,
	}
	g.intents[intent.ID] = intent
	return intent, nil
}

func (g *fakeGateway) GetIntent(ctx context.Context, id string) (*payments.Intent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	intent, ok := g.intents[id]
	if !ok {
		return nil, errors.New("no such intent")
	}
	return intent, nil
}

func (g *fakeGateway) CaptureIntent(ctx context.Context, id string, amountMinor int64) (*payments.CaptureResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.captureErr != nil {
		return nil, g.captureErr
	}
	g.captureCalls = append(g.captureCalls, amountMinor)
	return &payments.CaptureResult{
		IntentID:            id,
		AmountCapturedMinor: amountMinor,
		ChargeID:            "ch_" + id,
		BalanceTxID:         "txn_" + id,
	}, nil
}

func (g *fakeGateway) CancelIntent(ctx context.Context, id, reason string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.canceledIntents = append(g.canceledIntents, id)
	return nil
}

func (g *fakeGateway) CreateSetupIntent(ctx context.Context, customerID, paymentMethodID string) (*payments.SetupIntent, error) {
	return &payments.SetupIntent{ID: "seti_1", ClientSecret: "seti_1_secret", Status: "requires_confirmation"}, nil
}

func (g *fakeGateway) Refund(ctx context.Context, in payments.RefundInput) (*payments.Refund, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.refundErr != nil {
		return nil, g.refundErr
	}
	refund := &payments.Refund{
		ID:          fmt.Sprintf("re_%d", len(g.refunds)+1),
		AmountMinor: in.AmountMinor,
		Status:      "succeeded",
	}
	g.refunds = append(g.refunds, refund)
	g.refundAmounts = append(g.refundAmounts, in.AmountMinor)
	return refund, nil
}

func (g *fakeGateway) CreateTransfer(ctx context.Context, in payments.TransferInput) (*payments.Transfer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.transferErr != nil {
		return nil, g.transferErr
	}
	g.createTransferCalls++
	transfer := &payments.Transfer{
		ID:                 fmt.Sprintf("tr_%d", g.createTransferCalls),
		AmountMinor:        in.AmountMinor,
		Currency:           in.Currency,
		DestinationAccount: in.DestinationAccount,
		TransferGroup:      in.TransferGroup,
		SourceChargeID:     in.SourceChargeID,
		BalanceTxID:        "txn_tr_" + fmt.Sprint(g.createTransferCalls),
		Metadata:           in.Metadata,
	}
	g.transfers = append(g.transfers, transfer)
	return transfer, nil
}

func (g *fakeGateway) FindTransferByTxID(ctx context.Context, transferGroup, txID string) (*payments.Transfer, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, t := range g.transfers {
		if t.TransferGroup == transferGroup && t.Metadata[payments.MetaTxID] == txID {
			return t, nil
		}
	}
	return nil, nil
}

func (g *fakeGateway) ReverseTransfer(ctx context.Context, transferID string, amountMinor int64) (*payments.Reversal, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.reverseErr != nil {
		return nil, g.reverseErr
	}
	reversal := &payments.Reversal{
		ID:          fmt.Sprintf("trr_%d", len(g.reversals)+1),
		TransferID:  transferID,
		AmountMinor: amountMinor,
	}
	g.reversals = append(g.reversals, reversal)
	return reversal, nil
}

func (g *fakeGateway) BalanceTransaction(ctx context.Context, id string) (*payments.BalanceTx, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if b, ok := g.balances[id]; ok {
		return b, nil
	}
	return &payments.BalanceTx{ID: id}, nil
}

func (g *fakeGateway) GetVerificationSession(ctx context.Context, id string) (*payments.VerificationSession, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	session, ok := g.sessions[id]
	if !ok {
		return nil, errors.New("no such session")
	}
	return session, nil
}

type recordedTransition struct {
	TxID       string
	Transition txprocess.Transition
}

type fakePlatform struct {
	mu sync.Mutex

	transactions map[string]*platform.Transaction
	events       []platform.Event
	queryErr     error

	transitions    []recordedTransition
	transitionErrs map[string]error
	userMetadata   map[string]map[string]any
	txMetadata     map[string]map[string]any

	initiated     int
	initiateErrAt int // fail the Nth InitiateTransaction call, 0 for never
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		transactions:   map[string]*platform.Transaction{},
		transitionErrs: map[string]error{},
		userMetadata:   map[string]map[string]any{},
		txMetadata:     map[string]map[string]any{},
	}
}

func (p *fakePlatform) ShowTransaction(ctx context.Context, txID string) (*platform.Transaction, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	tx, ok := p.transactions[txID]
	if !ok {
		return nil, errors.New("transaction not found")
	}
	return tx, nil
}

func (p *fakePlatform) InitiateTransaction(ctx context.Context, in platform.InitiateInput) (*platform.Transaction, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.initiated++
	if p.initiateErrAt != 0 && p.initiated == p.initiateErrAt {
		return nil, errors.New("listing unavailable")
	}
	tx := &platform.Transaction{
		ID:             fmt.Sprintf("tx-item-%d", p.initiated),
		ProcessName:    txprocess.ProcessPurchase,
		LastTransition: in.Transition,
	}
	p.transactions[tx.ID] = tx
	return tx, nil
}

func (p *fakePlatform) Transition(ctx context.Context, txID string, t txprocess.Transition, params map[string]any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err, ok := p.transitionErrs[txID]; ok {
		return err
	}
	p.transitions = append(p.transitions, recordedTransition{TxID: txID, Transition: t})
	return nil
}

func (p *fakePlatform) UpdateTransactionMetadata(ctx context.Context, txID string, metadata map[string]any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.txMetadata[txID] = metadata
	return nil
}

func (p *fakePlatform) UpdateUserMetadata(ctx context.Context, userID string, metadata map[string]any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.userMetadata[userID] = metadata
	return nil
}

func (p *fakePlatform) QueryEvents(ctx context.Context, q platform.EventQuery) ([]platform.Event, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.queryErr != nil {
		return nil, p.queryErr
	}
	var out []platform.Event
	for _, ev := range p.events {
		if q.StartAfterSequenceID != nil && ev.SequenceID <= *q.StartAfterSequenceID {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

// In-memory repositories mirroring the gorm implementations' semantics.

type fakeLedgerRepo struct {
	mu        sync.Mutex
	rows      map[string]*db_models.FreeTransaction
	createErr error
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{rows: map[string]*db_models.FreeTransaction{}}
}

func (r *fakeLedgerRepo) Create(ctx context.Context, row *db_models.FreeTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.rows[row.TxID]; ok {
		return errors.New("duplicate key")
	}
	r.rows[row.TxID] = row
	return nil
}

func (r *fakeLedgerRepo) GetByTxID(ctx context.Context, txID string) (*db_models.FreeTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[txID]
	if !ok {
		return nil, nil
	}
	copied := *row
	return &copied, nil
}

func (r *fakeLedgerRepo) MarkReversed(ctx context.Context, txID, reversalID, refundID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[txID]
	if !ok || row.ProviderTransferStatus != db_models.TransferStatusTransfered {
		return false, nil
	}
	row.ProviderTransferStatus = db_models.TransferStatusReversed
	row.ReversalID = reversalID
	row.RefundID = refundID
	return true, nil
}

type fakeSequenceRepo struct {
	mu   sync.Mutex
	seqs map[string]int64
}

func newFakeSequenceRepo() *fakeSequenceRepo {
	return &fakeSequenceRepo{seqs: map[string]int64{}}
}

func (r *fakeSequenceRepo) Get(ctx context.Context, seqType string) (*db_models.Sequence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	last, ok := r.seqs[seqType]
	if !ok {
		return nil, nil
	}
	return &db_models.Sequence{Type: seqType, LastID: last}, nil
}

func (r *fakeSequenceRepo) Advance(ctx context.Context, seqType string, lastID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if lastID > r.seqs[seqType] {
		r.seqs[seqType] = lastID
	}
	return nil
}

type fakeHoldsRepo struct {
	mu   sync.Mutex
	rows map[string]*db_models.SecurityPayment // keyed by intent id
}

func newFakeHoldsRepo() *fakeHoldsRepo {
	return &fakeHoldsRepo{rows: map[string]*db_models.SecurityPayment{}}
}

func (r *fakeHoldsRepo) Create(ctx context.Context, payment *db_models.SecurityPayment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[payment.IntentID] = payment
	return nil
}

func (r *fakeHoldsRepo) GetByIntentID(ctx context.Context, intentID string) (*db_models.SecurityPayment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[intentID]
	if !ok {
		return nil, nil
	}
	return row, nil
}

func (r *fakeHoldsRepo) GetByTxPurpose(ctx context.Context, txID string, purpose db_models.SecurityPaymentPurpose) (*db_models.SecurityPayment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.TxID == txID && row.Purpose == purpose {
			return row, nil
		}
	}
	return nil, nil
}

func (r *fakeHoldsRepo) MarkCaptured(ctx context.Context, intentID string, capturedAmountMinor int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[intentID]
	if !ok || row.Status != db_models.SecurityPaymentActive {
		return utils.ErrDuplicateOperation
	}
	row.Status = db_models.SecurityPaymentCaptured
	row.CapturedAmountMinor = capturedAmountMinor
	return nil
}

func (r *fakeHoldsRepo) MarkCanceled(ctx context.Context, intentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row, ok := r.rows[intentID]; ok && row.Status == db_models.SecurityPaymentActive {
		row.Status = db_models.SecurityPaymentCanceled
	}
	return nil
}

type fakePayoutsRepo struct {
	mu   sync.Mutex
	rows []*db_models.SecurityPayout
}

func newFakePayoutsRepo() *fakePayoutsRepo { return &fakePayoutsRepo{} }

func (r *fakePayoutsRepo) Create(ctx context.Context, payout *db_models.SecurityPayout) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, payout)
	return nil
}

func (r *fakePayoutsRepo) GetByTransferID(ctx context.Context, transferID string) (*db_models.SecurityPayout, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.TransferID == transferID {
			return row, nil
		}
	}
	return nil, nil
}

func (r *fakePayoutsRepo) MarkPaid(ctx context.Context, transferID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.TransferID == transferID {
			row.Status = db_models.SecurityPayoutPaid
		}
	}
	return nil
}

type fakeRunLock struct {
	mu   sync.Mutex
	held map[string]bool
}

func newFakeRunLock() *fakeRunLock { return &fakeRunLock{held: map[string]bool{}} }

func (l *fakeRunLock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

func (l *fakeRunLock) Release(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}
