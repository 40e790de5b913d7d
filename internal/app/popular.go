package app

import (
	"github.com/bobmcallan/stockreport/internal/models"
)

type popularStock struct {
	Code   string
	Name   string
	Sector string
}

// popularStocks is a fixed list of heavily traded Hong Kong names.
var popularStocks = []popularStock{
	{"hk.00700", "Tencent Holdings", "Technology"},
	{"hk.09988", "Alibaba Group", "Technology"},
	{"hk.03690", "Meituan", "Technology"},
	{"hk.09618", "JD.com", "Technology"},
	{"hk.02318", "Ping An Insurance", "Financials"},
	{"hk.00939", "China Construction Bank", "Financials"},
	{"hk.00941", "China Mobile", "Telecom"},
	{"hk.00883", "CNOOC", "Energy"},
	{"hk.01299", "AIA Group", "Financials"},
	{"hk.00388", "Hong Kong Exchanges and Clearing", "Financials"},
	{"hk.00697", "Shoucheng Holdings", "Conglomerate"},
	{"hk.01810", "Xiaomi", "Technology"},
	{"hk.09999", "NetEase", "Technology"},
	{"hk.01024", "Kuaishou Technology", "Technology"},
	{"hk.01211", "BYD", "Automotive"},
}

func popularTable() *models.Table {
	tbl := &models.Table{Fields: []string{"code", "name", "sector"}, Source: "static"}
	for _, s := range popularStocks {
		tbl.Rows = append(tbl.Rows, []string{s.Code, s.Name, s.Sector})
	}
	return tbl
}
