// Package synth produces a deterministic Olist-shaped synthetic dataset
// for environments without network access to the hub. The same seed
// always yields the same bundle, cell for cell.
package synth

import (
	"fmt"
	"math/rand"
	"time"

	"commerce-etl/internal/dataset"
	"commerce-etl/internal/table"
)

// Options sizes the generated dataset.
type Options struct {
	Seed      int64
	Customers int
	Sellers   int
	Products  int
	Orders    int
	Start     time.Time
	End       time.Time
}

// Default sizes the dataset like a mid-size marketplace year.
func Default() Options {
	return Options{
		Seed:      42,
		Customers: 15000,
		Sellers:   500,
		Products:  3000,
		Orders:    50000,
		Start:     time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		End:       time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
	}
}

var categories = []string{
	"beleza_saude", "informatica_acessorios", "cama_mesa_banho",
	"moveis_decoracao", "esporte_lazer", "relogios_presentes",
	"telefonia", "brinquedos", "automotivo", "perfumaria",
}

var states = []string{"SP", "RJ", "MG", "RS", "PR", "SC", "BA", "DF", "GO", "PE"}

var cities = map[string][]string{
	"SP": {"sao paulo", "campinas", "santos"},
	"RJ": {"rio de janeiro", "niteroi"},
	"MG": {"belo horizonte", "uberlandia"},
	"RS": {"porto alegre", "caxias do sul"},
	"PR": {"curitiba", "londrina"},
	"SC": {"florianopolis", "joinville"},
	"BA": {"salvador", "feira de santana"},
	"DF": {"brasilia"},
	"GO": {"goiania"},
	"PE": {"recife"},
}

const tsLayout = "2006-01-02 15:04:05"

// Generate builds the six raw tables. Cells are strings, exactly as a
// CSV load would produce them, so the pipeline exercises the same
// coercion path either way.
func Generate(opts Options) *dataset.Bundle {
	r := rand.New(rand.NewSource(opts.Seed))
	b := dataset.NewBundle()

	customers := table.New("customer_id", "customer_state", "customer_city")
	for i := 0; i < opts.Customers; i++ {
		state := states[r.Intn(len(states))]
		customers.Append(table.Row{
			"customer_id":    fmt.Sprintf("c%08d", i),
			"customer_state": state,
			"customer_city":  cities[state][r.Intn(len(cities[state]))],
		})
	}
	b.Put(dataset.TableCustomers, customers)

	sellers := table.New("seller_id", "seller_state", "seller_city")
	for i := 0; i < opts.Sellers; i++ {
		state := states[r.Intn(len(states))]
		sellers.Append(table.Row{
			"seller_id":    fmt.Sprintf("s%08d", i),
			"seller_state": state,
			"seller_city":  cities[state][r.Intn(len(cities[state]))],
		})
	}
	b.Put(dataset.TableSellers, sellers)

	products := table.New("product_id", "product_category_name", "base_price")
	for i := 0; i < opts.Products; i++ {
		products.Append(table.Row{
			"product_id":            fmt.Sprintf("p%08d", i),
			"product_category_name": categories[r.Intn(len(categories))],
			"base_price":            fmt.Sprintf("%.2f", 10+r.Float64()*490),
		})
	}
	b.Put(dataset.TableProducts, products)

	orders := table.New(
		"order_id", "customer_id", "order_status",
		"order_purchase_timestamp", "order_approved_at",
		"order_delivered_carrier_date", "order_delivered_customer_date",
		"order_estimated_delivery_date",
	)
	items := table.New(
		"order_id", "order_item_id", "product_id", "seller_id",
		"price", "freight_value", "shipping_limit_date",
	)
	reviews := table.New(
		"order_id", "review_score",
		"review_creation_date", "review_answer_timestamp",
	)

	span := opts.End.Sub(opts.Start)
	for i := 0; i < opts.Orders; i++ {
		orderID := fmt.Sprintf("o%08d", i)
		customerID := fmt.Sprintf("c%08d", r.Intn(opts.Customers))

		purchase := opts.Start.Add(time.Duration(r.Int63n(int64(span))))
		approved := purchase.Add(time.Duration(1+r.Intn(48)) * time.Hour)
		estimated := purchase.AddDate(0, 0, 10+r.Intn(25))

		status := pickStatus(r)

		row := table.Row{
			"order_id":                      orderID,
			"customer_id":                   customerID,
			"order_status":                  status,
			"order_purchase_timestamp":      purchase.Format(tsLayout),
			"order_approved_at":             approved.Format(tsLayout),
			"order_delivered_carrier_date":  nil,
			"order_delivered_customer_date": nil,
			"order_estimated_delivery_date": estimated.Format(tsLayout),
		}

		if status == dataset.StatusDelivered {
			carrier := approved.Add(time.Duration(12+r.Intn(96)) * time.Hour)
			delivered := purchase.AddDate(0, 0, 3+r.Intn(40))
			row["order_delivered_carrier_date"] = carrier.Format(tsLayout)
			row["order_delivered_customer_date"] = delivered.Format(tsLayout)
		}
		orders.Append(row)

		nItems := 1 + r.Intn(3)
		for j := 1; j <= nItems; j++ {
			items.Append(table.Row{
				"order_id":            orderID,
				"order_item_id":       fmt.Sprintf("%d", j),
				"product_id":          fmt.Sprintf("p%08d", r.Intn(opts.Products)),
				"seller_id":           fmt.Sprintf("s%08d", r.Intn(opts.Sellers)),
				"price":               fmt.Sprintf("%.2f", 10+r.Float64()*490),
				"freight_value":       fmt.Sprintf("%.2f", 5+r.Float64()*45),
				"shipping_limit_date": approved.AddDate(0, 0, 3).Format(tsLayout),
			})
		}

		// Most delivered orders get a review, a few get two.
		if status == dataset.StatusDelivered && r.Float64() < 0.8 {
			n := 1
			if r.Float64() < 0.05 {
				n = 2
			}
			for k := 0; k < n; k++ {
				created := purchase.AddDate(0, 0, 5+r.Intn(30))
				reviews.Append(table.Row{
					"order_id":                orderID,
					"review_score":            fmt.Sprintf("%d", pickScore(r)),
					"review_creation_date":    created.Format(tsLayout),
					"review_answer_timestamp": created.Add(time.Duration(2+r.Intn(72)) * time.Hour).Format(tsLayout),
				})
			}
		}
	}

	b.Put(dataset.TableOrders, orders)
	b.Put(dataset.TableOrderItems, items)
	b.Put(dataset.TableReviews, reviews)
	return b
}

func pickStatus(r *rand.Rand) string {
	p := r.Float64()
	switch {
	case p < 0.85:
		return dataset.StatusDelivered
	case p < 0.91:
		return dataset.StatusCanceled
	case p < 0.95:
		return "shipped"
	case p < 0.98:
		return "processing"
	default:
		return "created"
	}
}

// pickScore skews ratings toward the high end, like real marketplaces.
func pickScore(r *rand.Rand) int {
	p := r.Float64()
	switch {
	case p < 0.55:
		return 5
	case p < 0.75:
		return 4
	case p < 0.85:
		return 3
	case p < 0.92:
		return 2
	default:
		return 1
	}
}
