package executor

import (
	"time"

	"github.com/outreachhq/sequencer/models"
)

// BuildVariableBag assembles the flat string->string merge-tag
// namespace: recipient fields, sender fields, constant fields, then
// the Personalizer's output for the active mode, merged in that order
// so personalizer output can't be shadowed by a recipient attr of the
// same name. Exported so the render-preview endpoint can build the
// same bag Execute would, without running the rest of the pipeline.
func BuildVariableBag(recipient *models.Recipient, sender *models.Sender, campaignName string, signaturePlain string) map[string]string {
	bag := map[string]string{
		"first_name":   recipient.FirstName,
		"last_name":    recipient.LastName,
		"email":        recipient.Email,
		"phone":        recipient.Phone,
		"company_name": recipient.Company,
		"title":        recipient.Title,
		"industry":     recipient.Industry,
		"linkedin_url": recipient.NetworkProfileURL,
	}
	for k, v := range recipient.Attrs {
		bag[k] = v
	}

	bag["sender_name"] = sender.FromName
	bag["sender_email"] = sender.FromEmail
	bag["signature"] = signaturePlain

	bag["current_date"] = time.Now().Format("2006-01-02")
	bag["campaign_name"] = campaignName
	return bag
}

func mergeVariables(bag map[string]string, extra map[string]string) {
	for k, v := range extra {
		bag[k] = v
	}
}
