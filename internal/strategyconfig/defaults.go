package strategyconfig

// Default returns the Top6_SL10 parameter set, the variant with the best
// risk-adjusted results in the calibration backtests. Filter thresholds are
// configuration inputs, not canon; other variants ship as their own YAML.
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID: "top6_sl10",
			Version:    "1.0.0",
		},
		Universe: Universe{
			Tickers: defaultUniverse(),
		},
		Signals: Signals{
			MinLookbackDays: 126,
			Momentum: Momentum{
				LookbacksDays: []int{21, 63, 126},
				Weights:       []float64{0.3, 0.4, 0.3},
			},
			Quality: Quality{
				MAShort:        20,
				MALong:         50,
				StabilityScale: 10.0,
			},
			RSI:           RSI{Period: 14},
			MeanReversion: MeanReversion{Window: 20},
			Volatility:    Volatility{Window: 63},
			Correlation:   Correlation{Enable: false, Scale: 0.1},
		},
		Scoring: Scoring{
			Weights: Weights{
				Momentum:       0.35,
				Quality:        0.25,
				VolatilityRisk: -0.15,
				RSI:            0.10,
				Sharpe:         0.15,
				MeanReversion:  0.05,
				Correlation:    10.0,
			},
		},
		Screening: Screening{
			VolCapPct:      60.0,
			MinReturn3MPct: 0.0,
			MinReturn6MPct: 0.0,
			MinComposite:   0.0,
			MomentumFloor:  30.0,
		},
		Portfolio: Portfolio{
			TopN:          6,
			SizingMode:    SizingEqual,
			MaxWeight:     0.20,
			KellyDivisor:  500.0,
			VolFloorPct:   20.0,
			RebalanceBand: 0.03,
			SoftCapWeight: 0.18,
			HardCapWeight: 0.16,
		},
		Exit: Exit{
			StopLossPct:   -10.0,
			TakeProfitPct: 40.0,
		},
		Backtest: Backtest{
			InitialCash: 100_000,
			Rebalance:   RebalanceWeekly,
		},
	}
}

// defaultUniverse is the liquid NSE momentum universe the shipped strategy
// screens. Override it per strategy YAML.
func defaultUniverse() []string {
	return []string{
		"RELIANCE.NS", "TCS.NS", "INFY.NS", "HDFCBANK.NS",
		"ICICIBANK.NS", "KOTAKBANK.NS", "SBIN.NS", "AXISBANK.NS",
		"BAJFINANCE.NS", "BAJAJFINSV.NS", "HCLTECH.NS", "WIPRO.NS",
		"TECHM.NS", "LT.NS", "ASIANPAINT.NS", "HINDUNILVR.NS",
		"ITC.NS", "TITAN.NS", "MARUTI.NS", "M&M.NS",
		"EICHERMOT.NS", "SUNPHARMA.NS", "CIPLA.NS", "DRREDDY.NS",
		"APOLLOHOSP.NS", "DIVISLAB.NS", "ADANIENT.NS", "ADANIPORTS.NS",
		"POWERGRID.NS", "NTPC.NS", "TATAPOWER.NS", "ONGC.NS",
		"COALINDIA.NS", "BHARTIARTL.NS", "HINDALCO.NS", "JSWSTEEL.NS",
		"TATASTEEL.NS", "GRASIM.NS", "UPL.NS", "SBILIFE.NS",
		"HDFCLIFE.NS", "ICICIPRULI.NS", "DLF.NS", "PIDILITIND.NS",
		"TRENT.NS", "DMART.NS", "NYKAA.NS", "BANKBARODA.NS",
		"PNB.NS", "CANBK.NS", "UNIONBANK.NS", "IDFCFIRSTB.NS",
		"BANDHANBNK.NS", "INDUSINDBK.NS", "FEDERALBNK.NS", "AUBANK.NS",
		"CHOLAFIN.NS", "LTF.NS", "MUTHOOTFIN.NS", "ABCAPITAL.NS",
		"LICI.NS", "BAJAJHLDNG.NS", "GODREJCP.NS", "MARICO.NS",
		"COLPAL.NS", "BRITANNIA.NS", "DABUR.NS", "NESTLEIND.NS",
		"HAVELLS.NS", "PAGEIND.NS", "VOLTAS.NS", "SIEMENS.NS",
		"ABB.NS", "ASHOKLEY.NS", "ESCORTS.NS", "BOSCHLTD.NS",
		"CUMMINSIND.NS", "MOTHERSON.NS", "BHEL.NS", "IRCTC.NS",
		"ADANIGREEN.NS", "ADANIPOWER.NS", "TATACHEM.NS", "ALKEM.NS",
		"LUPIN.NS", "TORNTPHARM.NS", "GLENMARK.NS", "MPHASIS.NS",
		"PERSISTENT.NS", "LTIM.NS", "COFORGE.NS", "INDIAMART.NS",
		"POLYCAB.NS", "KEI.NS", "APLAPOLLO.NS",
	}
}
