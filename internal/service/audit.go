package service

import (
	"strconv"

	"github.com/zlovtnik/homeswift/internal/models"
	"github.com/zlovtnik/homeswift/internal/quote"
	"github.com/zlovtnik/homeswift/pkg/fp"
)

// audit collects the history rows written with a mutation
type audit struct {
	performedBy string
	ip          string
	entries     []models.CreateHistoryRequest
}

func newAudit(performedBy, ip string) *audit {
	return &audit{performedBy: performedBy, ip: ip}
}

func (a *audit) add(action models.HistoryAction, field, oldValue, newValue string) {
	a.entries = append(a.entries, models.CreateHistoryRequest{
		Action:       action,
		FieldChanged: field,
		OldValue:     oldValue,
		NewValue:     newValue,
		PerformedBy:  a.performedBy,
		IPAddress:    a.ip,
	})
}

// change records an UPDATE row when the value actually differs
func (a *audit) change(field, oldValue, newValue string) {
	if oldValue == newValue {
		return
	}
	a.add(models.HistoryActionUpdate, field, oldValue, newValue)
}

func (a *audit) status(from, to models.RequestStatus) {
	if from == to {
		return
	}
	a.add(models.HistoryActionStatusChange, "status", string(from), string(to))
}

// applyPatch copies the non-nil non-status fields of req onto sr. A resolved provider
// replaces the contact snapshot except for the fields the patch sets itself.
func applyPatch(sr *models.ServiceRequest, req *models.UpdateServiceRequestRequest, provider *models.Provider, a *audit) {
	if req.Priority != nil {
		a.change("priority", string(sr.Priority), string(*req.Priority))
		sr.Priority = *req.Priority
	}
	name, phone, email := req.ProviderName, req.ProviderPhone, req.ProviderEmail
	if provider != nil {
		a.change("assigned_provider_id", int64PtrString(sr.AssignedProviderID), strconv.FormatInt(provider.ID, 10))
		id := provider.ID
		sr.AssignedProviderID = &id
		name = orElse(name, provider.Name)
		phone = orElse(phone, provider.Phone)
		email = orElse(email, provider.Email)
	}
	patchString(a, "provider_name", &sr.ProviderName, name)
	patchString(a, "provider_phone", &sr.ProviderPhone, phone)
	patchString(a, "provider_email", &sr.ProviderEmail, email)
	patchString(a, "payment_method", &sr.PaymentMethod, req.PaymentMethod)
	patchBool(a, "customer_payment_received", &sr.CustomerPaymentReceived, req.CustomerPaymentReceived)
	patchBool(a, "provider_payment_made", &sr.ProviderPaymentMade, req.ProviderPaymentMade)
	patchBool(a, "commission_collected", &sr.CommissionCollected, req.CommissionCollected)
	patchString(a, "admin_notes", &sr.AdminNotes, req.AdminNotes)
}

// checkPatchWidths rejects free-text patch values wider than their columns
func checkPatchWidths(req *models.UpdateServiceRequestRequest) error {
	fields := []struct {
		value *string
		check fp.Validator[string]
	}{
		{req.ProviderName, quote.MaxLength("provider_name", quote.MaxProviderName)},
		{req.ProviderPhone, quote.MaxLength("provider_phone", quote.MaxProviderPhone)},
		{req.ProviderEmail, quote.MaxLength("provider_email", quote.MaxProviderEmail)},
		{req.PaymentMethod, quote.MaxLength("payment_method", quote.MaxPaymentMethod)},
		{req.AdminNotes, quote.MaxLength("admin_notes", quote.MaxAdminNotes)},
	}
	for _, f := range fields {
		if f.value == nil {
			continue
		}
		if err := f.check(*f.value); err != nil {
			return err
		}
	}
	return nil
}

func orElse(v *string, fallback string) *string {
	if v != nil {
		return v
	}
	return &fallback
}

func patchString(a *audit, field string, dst *string, v *string) {
	if v == nil {
		return
	}
	a.change(field, *dst, *v)
	*dst = *v
}

func patchBool(a *audit, field string, dst *bool, v *bool) {
	if v == nil {
		return
	}
	a.change(field, strconv.FormatBool(*dst), strconv.FormatBool(*v))
	*dst = *v
}

func int64PtrString(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
