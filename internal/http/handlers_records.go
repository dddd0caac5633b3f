package http

import (
	"net/http"
	"sync/atomic"

	"fintrack/internal/core"
	applog "fintrack/internal/log"
)

func (s *Server) fail(w http.ResponseWriter, r *http.Request, op, resource string, err error) {
	resp, errorType := errorFor(err)
	fields := applog.NewFields().WithRecord(resource, r.PathValue("id"))
	if errorType == applog.ErrorTypeInternal {
		applog.NewStructuredLogger(applog.FromContext(r.Context())).
			LogError(r.Context(), "Record operation failed", err, errorType, op, fields)
	} else {
		applog.FromContext(r.Context()).DebugContext(r.Context(), "Record request rejected",
			fields.WithError(err, errorType).WithOperation(op).ToSlice()...)
	}
	resp.Write(w)
}

func (s *Server) written(r *http.Request, op, resource, id string, amount core.Money, category string) {
	switch op {
	case applog.OpCreate:
		atomic.AddInt64(&s.appMetrics.created, 1)
	case applog.OpUpdate:
		atomic.AddInt64(&s.appMetrics.updated, 1)
	case applog.OpDelete:
		atomic.AddInt64(&s.appMetrics.deleted, 1)
	}
	applog.NewStructuredLogger(applog.FromContext(r.Context())).
		LogRecordWritten(r.Context(), op, resource, id, amount.Cents, category)
}

func (s *Server) handleListTransactions(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		txs, err := s.store.ListTransactions(r.Context(), kind)
		if err != nil {
			s.fail(w, r, applog.OpList, kind.Collection(), err)
			return
		}
		NewJSONResponse().Data(txs).Write(w)
	}
}

func (s *Server) handleCreateTransaction(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := decodeTransactionFields(w, r)
		if err != nil {
			s.fail(w, r, applog.OpCreate, kind.Collection(), err)
			return
		}
		tx, err := s.store.CreateTransaction(r.Context(), kind, f)
		if err != nil {
			s.fail(w, r, applog.OpCreate, kind.Collection(), err)
			return
		}
		s.written(r, applog.OpCreate, kind.Collection(), tx.ID, tx.Amount, tx.Category)
		NewJSONResponse().Status(http.StatusCreated).Data(tx).Write(w)
	}
}

func (s *Server) handleUpdateTransaction(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r)
		if err != nil {
			s.fail(w, r, applog.OpUpdate, kind.Collection(), err)
			return
		}
		f, err := decodeTransactionFields(w, r)
		if err != nil {
			s.fail(w, r, applog.OpUpdate, kind.Collection(), err)
			return
		}
		tx, err := s.store.UpdateTransaction(r.Context(), kind, id, f)
		if err != nil {
			s.fail(w, r, applog.OpUpdate, kind.Collection(), err)
			return
		}
		s.written(r, applog.OpUpdate, kind.Collection(), tx.ID, tx.Amount, tx.Category)
		NewJSONResponse().Data(tx).Write(w)
	}
}

func (s *Server) handleDeleteTransaction(kind core.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.handleDelete(w, r, kind.Collection(), func(id string) error {
			return s.store.DeleteTransaction(r.Context(), kind, id)
		})
	}
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.store.ListBudgets(r.Context())
	if err != nil {
		s.fail(w, r, applog.OpList, core.ResourceBudget, err)
		return
	}
	NewJSONResponse().Data(budgets).Write(w)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	f, err := decodeBudgetFields(w, r)
	if err != nil {
		s.fail(w, r, applog.OpCreate, core.ResourceBudget, err)
		return
	}
	b, err := s.store.CreateBudget(r.Context(), f)
	if err != nil {
		s.fail(w, r, applog.OpCreate, core.ResourceBudget, err)
		return
	}
	s.written(r, applog.OpCreate, core.ResourceBudget, b.ID, b.Limit, b.Category)
	NewJSONResponse().Status(http.StatusCreated).Data(b).Write(w)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, core.ResourceBudget, func(id string) error {
		return s.store.DeleteBudget(r.Context(), id)
	})
}

func (s *Server) handleListSavings(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListSavings(r.Context())
	if err != nil {
		s.fail(w, r, applog.OpList, core.ResourceSavings, err)
		return
	}
	NewJSONResponse().Data(list).Write(w)
}

func (s *Server) handleCreateSavings(w http.ResponseWriter, r *http.Request) {
	f, err := decodeSavingsFields(w, r)
	if err != nil {
		s.fail(w, r, applog.OpCreate, core.ResourceSavings, err)
		return
	}
	sv, err := s.store.CreateSavings(r.Context(), f)
	if err != nil {
		s.fail(w, r, applog.OpCreate, core.ResourceSavings, err)
		return
	}
	s.written(r, applog.OpCreate, core.ResourceSavings, sv.ID, sv.Amount, "")
	NewJSONResponse().Status(http.StatusCreated).Data(sv).Write(w)
}

func (s *Server) handleDeleteSavings(w http.ResponseWriter, r *http.Request) {
	s.handleDelete(w, r, core.ResourceSavings, func(id string) error {
		return s.store.DeleteSavings(r.Context(), id)
	})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request, resource string, del func(id string) error) {
	id, err := pathID(r)
	if err != nil {
		s.fail(w, r, applog.OpDelete, resource, err)
		return
	}
	if err := del(id); err != nil {
		s.fail(w, r, applog.OpDelete, resource, err)
		return
	}
	s.written(r, applog.OpDelete, resource, id, core.Money{}, "")
	NewJSONResponse().Message(resource + " deleted").Write(w)
}

// methodNotAllowed answers routes that exist for other methods only.
func methodNotAllowed(allow string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		MethodNotAllowedError(allow).Write(w)
	}
}
