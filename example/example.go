package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"sync"

	"github.com/gargos-crypto/gargos/internal/test"
	"github.com/gargos-crypto/gargos/pkg/math/curve"
	"github.com/gargos-crypto/gargos/pkg/party"
	"github.com/gargos-crypto/gargos/pkg/pool"
	"github.com/gargos-crypto/gargos/pkg/protocol"
	"github.com/gargos-crypto/gargos/pkg/timelock"
	"github.com/gargos-crypto/gargos/protocols/gargos"
	"github.com/gargos-crypto/gargos/protocols/gargos/combine"
	"github.com/gargos-crypto/gargos/protocols/gargos/sign"
	"github.com/gargos-crypto/gargos/protocols/gargos/trace"
)

// artifacts is what each signer hands to the combiner after a session.
type artifacts struct {
	config  *gargos.Config
	session *gargos.Session
	partial *gargos.PartialSignature
}

func Keygen(group curve.Curve, id party.ID, ids party.IDSlice, threshold int, authority *trace.Authority, authorizer *trace.Authorizer, n *test.Network) (*gargos.Config, error) {
	start := gargos.Keygen(group, id, ids, threshold)
	if authority != nil {
		start = gargos.KeygenTracing(group, id, ids, threshold, authority.PublicKey(), authorizer.PublicKey())
	}
	h, err := protocol.NewMultiHandler(start, nil)
	if err != nil {
		return nil, err
	}
	test.HandlerLoop(id, h, n)
	r, err := h.Result()
	if err != nil {
		return nil, err
	}
	return r.(*gargos.Config), nil
}

func Sign(c *gargos.Config, m []byte, signers party.IDSlice, n *test.Network) (*sign.Result, error) {
	h, err := protocol.NewMultiHandler(gargos.Sign(c, signers, m), nil)
	if err != nil {
		return nil, err
	}
	test.HandlerLoop(c.ID, h, n)
	r, err := h.Result()
	if err != nil {
		return nil, err
	}
	return r.(*sign.Result), nil
}

func All(group curve.Curve, id party.ID, ids party.IDSlice, threshold int, message []byte, authority *trace.Authority, authorizer *trace.Authorizer, n *test.Network, wg *sync.WaitGroup, out chan<- artifacts) error {
	defer wg.Done()

	c, err := Keygen(group, id, ids, threshold, authority, authorizer, n)
	if err != nil {
		return err
	}

	signers := ids[:threshold]
	if !signers.Contains(id) {
		n.Quit(id)
		return nil
	}

	result, err := Sign(c, message, signers, n)
	if err != nil {
		return err
	}
	out <- artifacts{config: c, session: result.Session, partial: result.Partial}
	return nil
}

func main() {
	group := curve.Secp256k1{}
	ids := test.PartyIDs(5)
	threshold := 3
	message := []byte("hello")

	authority := trace.NewAuthority(rand.Reader, group)
	authorizer := trace.NewAuthorizer(rand.Reader, group)

	net := test.NewNetwork(ids)
	out := make(chan artifacts, threshold)

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id party.ID) {
			if err := All(group, id, ids, threshold, message, authority, authorizer, net, &wg, out); err != nil {
				fmt.Println(err)
			}
		}(id)
	}
	wg.Wait()
	close(out)

	var session *gargos.Session
	var public *gargos.Public
	partials := make([]*gargos.PartialSignature, 0, threshold)
	for a := range out {
		session = a.session
		public = a.config.Public()
		partials = append(partials, a.partial)
	}
	if session == nil {
		fmt.Println("signing failed")
		return
	}

	signature, err := combine.Combine(public, session, partials)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("signature verifies: %v\n", signature.Verify(public.PublicKey, message))

	signature, proof, err := combine.Verifiable(rand.Reader, public, session, partials)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("combining proof verifies: %v\n", proof.Verify(public, message, signature))

	pl := pool.NewPool(0)
	defer pl.TearDown()
	tl, err := timelock.NewParameters(rand.Reader, pl, 1<<18)
	if err != nil {
		fmt.Println(err)
		return
	}
	timed, err := combine.Timed(rand.Reader, public, session, partials, tl)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("timed signature verifies: %v\n", timed.Verify(public, message))
	solved, err := timed.Solve(context.Background(), public, message)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("solved signature verifies: %v\n", solved.Verify(public.PublicKey, message))

	warrant := authorizer.Authorize(message, authority.PublicKey())
	traced, err := authority.Trace(warrant, public, message, partials)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("traced signers: %v\n", traced.Indices())
	fmt.Printf("trace evidence verifies: %v\n", traced.Verify(public, message, partials))
}
