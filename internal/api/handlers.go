package api

import (
	"net/http"

	"github.com/mmynk/familyledger/internal/apperr"
	"github.com/mmynk/familyledger/internal/auth"
	"github.com/mmynk/familyledger/internal/middleware"
	"github.com/mmynk/familyledger/internal/models"
	"github.com/mmynk/familyledger/internal/reminder"
	"github.com/mmynk/familyledger/internal/service"
	"github.com/mmynk/familyledger/pkg/ledgerapi"
)

func authResponse(session *service.Session) ledgerapi.AuthResponse {
	return ledgerapi.AuthResponse{User: toUser(session.User), Token: session.Token}
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req ledgerapi.RegisterRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	session, err := s.auth.Register(r.Context(), auth.Registration{
		Name:     req.Name,
		Handle:   req.Handle,
		Email:    req.Email,
		Password: req.Password,
		Currency: req.Currency,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse(session))
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req ledgerapi.LoginRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	login := req.Login
	if login == "" {
		login = req.Email
	}

	session, err := s.auth.Login(r.Context(), login, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse(session))
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toUser(middleware.UserFromContext(r.Context())))
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req ledgerapi.ProfileRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	session, err := s.auth.UpdateProfile(r.Context(), middleware.UserFromContext(r.Context()), models.ProfileUpdate{
		Name:     req.Name,
		Avatar:   req.Avatar,
		Currency: req.Currency,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse(session))
}

func (s *Server) createGroup(w http.ResponseWriter, r *http.Request) {
	var req ledgerapi.CreateGroupRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	group, err := s.groups.CreateGroup(r.Context(), middleware.UserFromContext(r.Context()), req.Name)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGroup(group))
}

func (s *Server) joinGroup(w http.ResponseWriter, r *http.Request) {
	var req ledgerapi.JoinGroupRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	group, err := s.groups.JoinGroup(r.Context(), middleware.UserFromContext(r.Context()), req.InviteCode)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ledgerapi.JoinGroupResponse{
		Message:   "Successfully joined group",
		GroupID:   group.ID,
		GroupName: group.Name,
	})
}

func (s *Server) leaveGroup(w http.ResponseWriter, r *http.Request) {
	if err := s.groups.LeaveGroup(r.Context(), middleware.UserFromContext(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ledgerapi.MessageResponse{Message: "Successfully left group"})
}

func (s *Server) updateSettings(w http.ResponseWriter, r *http.Request) {
	var req ledgerapi.SettingsRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	group, err := s.groups.UpdateSettings(r.Context(), middleware.UserFromContext(r.Context()), models.SettingsUpdate{
		Income: req.Income,
		Budget: req.Budget,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroup(group))
}

// getGroup responds with the actor's group, or null when the actor is in none.
func (s *Server) getGroup(w http.ResponseWriter, r *http.Request) {
	group, err := s.groups.GetGroup(r.Context(), middleware.UserFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if group == nil {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, toGroup(group))
}

func (s *Server) getMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.groups.GetMembers(r.Context(), middleware.UserFromContext(r.Context()).GroupID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toMembers(members))
}

func (s *Server) listExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.expenses.ListExpenses(r.Context(), middleware.UserFromContext(r.Context()).GroupID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenses(expenses))
}

func (s *Server) addExpense(w http.ResponseWriter, r *http.Request) {
	var req ledgerapi.ExpenseRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	date, err := ledgerapi.ParseDate(req.Date)
	if err != nil {
		writeError(w, r, apperr.Validation(err.Error()))
		return
	}

	expense, err := s.expenses.AddExpense(r.Context(), middleware.UserFromContext(r.Context()), service.ExpenseInput{
		Title:    req.Title,
		Amount:   req.Amount,
		Category: req.Category,
		Date:     date,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpense(expense))
}

func (s *Server) deleteExpense(w http.ResponseWriter, r *http.Request) {
	err := s.expenses.DeleteExpense(r.Context(), middleware.UserFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ledgerapi.MessageResponse{Message: "Expense removed"})
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.expenses.Summary(r.Context(), middleware.UserFromContext(r.Context()), r.URL.Query().Get("window"), s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary.API())
}

func (s *Server) listBills(w http.ResponseWriter, r *http.Request) {
	entries, err := s.bills.ListBills(r.Context(), middleware.UserFromContext(r.Context()).GroupID, s.now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBills(entries))
}

func (s *Server) addBill(w http.ResponseWriter, r *http.Request) {
	var req ledgerapi.BillRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	dueDate, err := ledgerapi.ParseDate(req.DueDate)
	if err != nil {
		writeError(w, r, apperr.Validation(err.Error()))
		return
	}

	bill, err := s.bills.AddBill(r.Context(), middleware.UserFromContext(r.Context()), service.BillInput{
		Title:       req.Title,
		Description: req.Description,
		Amount:      req.Amount,
		DueDate:     dueDate,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBill(bill, reminder.Status(s.now(), bill.DueDate)))
}

func (s *Server) togglePin(w http.ResponseWriter, r *http.Request) {
	bill, err := s.bills.TogglePin(r.Context(), middleware.UserFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBill(bill, reminder.Status(s.now(), bill.DueDate)))
}

func (s *Server) deleteBill(w http.ResponseWriter, r *http.Request) {
	if err := s.bills.DeleteBill(r.Context(), middleware.UserFromContext(r.Context()), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ledgerapi.MessageResponse{Message: "Bill removed"})
}
