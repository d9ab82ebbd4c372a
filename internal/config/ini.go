package config

import (
	"fmt"

	"gopkg.in/ini.v1"

	"LCInvestor/internal/model"
)

// Section names of the legacy .cfg layout.
const (
	iniAccountSection  = "AccountData"
	iniCriteriaSection = "LoanCriteria"
)

func parseINI(data []byte) (*Config, error) {
	f, err := ini.LoadSources(ini.LoadOptions{
		// Criterion names must match listing fields verbatim.
		Insensitive: false,
	}, data)
	if err != nil {
		return nil, &Error{Reason: fmt.Sprintf("parse ini: %v", err)}
	}

	acct, err := f.GetSection(iniAccountSection)
	if err != nil {
		return nil, &Error{Section: iniAccountSection, Reason: "section is missing"}
	}
	raw := rawAccount{}
	for _, field := range []struct {
		key string
		dst *string
	}{
		{"investorId", &raw.InvestorID},
		{"authKey", &raw.AuthKey},
		{"reserveCash", &raw.ReserveCash},
		{"investAmount", &raw.InvestAmount},
		{"portfolioName", &raw.PortfolioName},
	} {
		if !acct.HasKey(field.key) {
			return nil, &Error{Section: iniAccountSection, Key: field.key, Reason: "is required"}
		}
		*field.dst = acct.Key(field.key).String()
	}
	account, err := raw.cast()
	if err != nil {
		return nil, err
	}

	crit, err := f.GetSection(iniCriteriaSection)
	if err != nil {
		return nil, &Error{Section: iniCriteriaSection, Reason: "section is missing"}
	}
	criteria := make(Criteria, 0, len(crit.Keys()))
	for _, k := range crit.Keys() {
		criteria = append(criteria, Criterion{Name: k.Name(), Value: model.CastNum(k.Value())})
	}

	cfg := &Config{Account: account, Criteria: criteria}
	cfg.Gateway.RequestsPerSecond = DefaultRequestsPerSecond
	return cfg, nil
}
