package service

type exchangeInfoResponse struct {
	Symbols []struct {
		Symbol         string     `json:"symbol"`
		Status         string     `json:"status"`
		BaseAsset      string     `json:"baseAsset"`
		QuoteAsset     string     `json:"quoteAsset"`
		Permissions    []string   `json:"permissions"`
		PermissionSets [][]string `json:"permissionSets"`
	} `json:"symbols"`
}

type accountResponse struct {
	CanTrade bool `json:"canTrade"`
	Balances []struct {
		Asset  string `json:"asset"`
		Free   string `json:"free"`
		Locked string `json:"locked"`
	} `json:"balances"`
}

type ticker24h struct {
	Symbol             string `json:"symbol"`
	LastPrice          string `json:"lastPrice"`
	PriceChangePercent string `json:"priceChangePercent"`
}

type orderResponse struct {
	Symbol              string `json:"symbol"`
	OrderID             int64  `json:"orderId"`
	ClientOrderID       string `json:"clientOrderId"`
	Status              string `json:"status"`
	ExecutedQty         string `json:"executedQty"`
	CummulativeQuoteQty string `json:"cummulativeQuoteQty"`
	Fills               []struct {
		Price string `json:"price"`
		Qty   string `json:"qty"`
	} `json:"fills"`
}
