package db

const Schema = `
CREATE TABLE IF NOT EXISTS price_bars (
	symbol TEXT NOT NULL,
	ts     TIMESTAMPTZ NOT NULL,
	open   DOUBLE PRECISION NOT NULL,
	high   DOUBLE PRECISION NOT NULL,
	low    DOUBLE PRECISION NOT NULL,
	close  DOUBLE PRECISION NOT NULL,
	volume DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (symbol, ts)
);

CREATE TABLE IF NOT EXISTS signal_trades (
	id         BIGSERIAL PRIMARY KEY,
	symbol     TEXT NOT NULL,
	buy_date   TIMESTAMPTZ NOT NULL,
	sell_date  TIMESTAMPTZ NOT NULL,
	slot       INTEGER NOT NULL,           -- position among trades sharing buy/sell dates
	buy_price  DOUBLE PRECISION NOT NULL,
	sell_price DOUBLE PRECISION NOT NULL,
	profit     DOUBLE PRECISION NOT NULL,
	indicators TEXT[] NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (symbol, buy_date, sell_date, slot)
);

CREATE INDEX IF NOT EXISTS idx_signal_trades_symbol_sell
	ON signal_trades(symbol, sell_date DESC);
`
