package billingsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"github.com/cavok/flightdesk/core"
)

const dateLayout = "2006-01-02"

type (
	smartbillItem struct {
		Name            string  `json:"name"`
		MeasuringUnit   string  `json:"measuringUnitName"`
		Quantity        float64 `json:"quantity"`
		Price           float64 `json:"price"`
		TotalAmount     float64 `json:"totalAmount"`
		IsDiscount      bool    `json:"isDiscount"`
		IsTaxIncluded   bool    `json:"isTaxIncluded"`
		TaxPercentage   float64 `json:"taxPercentage"`
		SaveToDatabase  bool    `json:"saveToDb"`
		IsService       bool    `json:"isService"`
		WarehouseName   string  `json:"warehouseName"`
		ProductCode     string  `json:"code"`
		Currency        string  `json:"currency"`
		TranslatedName  string  `json:"translatedName"`
		TranslatedUnit  string  `json:"translatedMeasuringUnit"`
	}

	smartbillClient struct {
		Name  string `json:"name"`
		VAT   string `json:"vatCode"`
		Email string `json:"email"`
	}

	smartbillInvoice struct {
		Series    string          `json:"seriesName"`
		Number    string          `json:"number"`
		Client    smartbillClient `json:"client"`
		IssueDate string          `json:"issueDate"`
		DueDate   string          `json:"dueDate"`
		Currency  string          `json:"currency"`
		Paid      bool            `json:"paid"`
		Products  []smartbillItem `json:"products"`
	}

	smartbillInvoiceList struct {
		Invoices []smartbillInvoice `json:"invoices"`
	}

	smartbillError struct {
		ErrorText string `json:"errorText"`
		Message   string `json:"message"`
	}
)

type smartbillService struct {
	client     *http.Client
	baseURL    string
	username   string
	token      string
	companyVAT string
}

var _ core.BillingService = (*smartbillService)(nil)

func NewSmartbillService(conf *core.Config) *smartbillService {
	return &smartbillService{
		client:     &http.Client{Timeout: 30 * time.Second},
		baseURL:    conf.SmartBill.BaseURL,
		username:   conf.SmartBill.Username,
		token:      conf.SmartBill.Token,
		companyVAT: conf.SmartBill.CompanyVAT,
	}
}

func (svc *smartbillService) get(ctx context.Context, path string, query url.Values, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, svc.baseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return errors.Wrap(err, "creating request")
	}
	req.SetBasicAuth(svc.username, svc.token)
	req.Header.Set("Accept", "application/json")

	res, err := svc.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "calling billing API")
	}
	defer res.Body.Close()

	if res.StatusCode >= http.StatusBadRequest {
		var sbErr smartbillError
		if err := json.NewDecoder(res.Body).Decode(&sbErr); err == nil && sbErr.ErrorText != "" {
			return errors.Errorf("billing API: %s (status %d)", sbErr.ErrorText, res.StatusCode)
		}
		return errors.Errorf("billing API: status %d", res.StatusCode)
	}
	return errors.Wrap(json.NewDecoder(res.Body).Decode(dest), "decoding billing API response")
}

func (svc *smartbillService) GetInvoice(ctx context.Context, series, number string) (core.BillingInvoice, error) {
	query := url.Values{}
	query.Set("cif", svc.companyVAT)
	query.Set("seriesname", series)
	query.Set("number", number)

	var sbInv smartbillInvoice
	if err := svc.get(ctx, "/invoice", query, &sbInv); err != nil {
		return core.BillingInvoice{}, err
	}
	return svc.toInvoice(sbInv)
}

func (svc *smartbillService) ListPaidInvoices(ctx context.Context, since time.Time) ([]core.BillingInvoice, error) {
	query := url.Values{}
	query.Set("cif", svc.companyVAT)
	query.Set("startdate", since.Format(dateLayout))
	query.Set("paid", "true")

	var list smartbillInvoiceList
	if err := svc.get(ctx, "/invoice/list", query, &list); err != nil {
		return nil, err
	}

	invoices := make([]core.BillingInvoice, 0, len(list.Invoices))
	for _, sbInv := range list.Invoices {
		inv, err := svc.toInvoice(sbInv)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, nil
}

func (svc *smartbillService) toInvoice(sbInv smartbillInvoice) (core.BillingInvoice, error) {
	issueDate, err := time.Parse(dateLayout, sbInv.IssueDate)
	if err != nil {
		return core.BillingInvoice{}, errors.Wrap(err, fmt.Sprintf("parsing issue date of %s%s", sbInv.Series, sbInv.Number))
	}
	var dueDate time.Time
	if sbInv.DueDate != "" {
		if dueDate, err = time.Parse(dateLayout, sbInv.DueDate); err != nil {
			return core.BillingInvoice{}, errors.Wrap(err, fmt.Sprintf("parsing due date of %s%s", sbInv.Series, sbInv.Number))
		}
	}

	inv := core.BillingInvoice{
		Series:      sbInv.Series,
		Number:      sbInv.Number,
		ClientName:  sbInv.Client.Name,
		ClientVAT:   sbInv.Client.VAT,
		ClientEmail: sbInv.Client.Email,
		IssueDate:   issueDate,
		DueDate:     dueDate,
		Currency:    sbInv.Currency,
		Paid:        sbInv.Paid,
	}
	for _, item := range sbInv.Products {
		if item.IsDiscount {
			continue
		}
		inv.Items = append(inv.Items, core.BillingItem{
			Name:        item.Name,
			Unit:        item.MeasuringUnit,
			Quantity:    item.Quantity,
			UnitPrice:   item.Price,
			TotalAmount: item.TotalAmount,
		})
	}
	return inv, nil
}
