package lp_v3

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/AlexNa-Holdings/lptracker/cmn"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	manager = common.HexToAddress("0xC36442b4a4522E871399CD717aBDD847Ab11FE88")
	factory = common.HexToAddress("0x1F98431c8aD98523631AE4a59f267346ea31F984")
	pool    = common.HexToAddress("0xC6962004f452bE9203591991D15f6b388e09E8D0")
	weth    = common.HexToAddress("0x82aF49447D8a07e3bd95BD0d56f35241523fBab1")
	usdc    = common.HexToAddress("0xaf88d065e77c8cC2239327C5EDb3A432268e5831")
	owner   = common.HexToAddress("0x00000000000000000000000000000000000000aa")
)

type fakeCaller struct {
	t       *testing.T
	outputs map[string][]byte
	errs    map[string]error
	msgs    map[string]ethereum.CallMsg
}

func newFakeCaller(t *testing.T) *fakeCaller {
	return &fakeCaller{t: t, outputs: map[string][]byte{}, errs: map[string]error{}, msgs: map[string]ethereum.CallMsg{}}
}

func (f *fakeCaller) set(a *abi.ABI, method string, values ...interface{}) {
	out, err := a.Methods[method].Outputs.Pack(values...)
	require.NoError(f.t, err)
	f.outputs[method] = out
}

func (f *fakeCaller) CallContract(ctx context.Context, msg ethereum.CallMsg, block *big.Int) ([]byte, error) {
	var name string
	for _, a := range []*abi.ABI{&V3_MANAGER, &V3_POOL, &V3_FACTORY} {
		if m, err := a.MethodById(msg.Data[:4]); err == nil {
			name = m.Name
			break
		}
	}
	f.msgs[name] = msg
	if err := f.errs[name]; err != nil {
		return nil, err
	}
	return f.outputs[name], nil
}

func TestReader_NftPosition(t *testing.T) {
	fc := newFakeCaller(t)
	fc.set(&V3_MANAGER, "positions",
		big.NewInt(0), common.Address{}, weth, usdc, big.NewInt(500),
		big.NewInt(-199000), big.NewInt(-197000), big.NewInt(123456789),
		big.NewInt(1), big.NewInt(2), big.NewInt(3), big.NewInt(4))

	r := NewReader(fc, manager)
	p, err := r.NftPosition(context.Background(), big.NewInt(4242))
	require.NoError(t, err)

	assert.Equal(t, weth, p.Token0)
	assert.Equal(t, usdc, p.Token1)
	assert.Equal(t, int64(500), p.Fee.Int64())
	assert.Equal(t, int64(-199000), p.TickLower)
	assert.Equal(t, int64(-197000), p.TickUpper)
	assert.Equal(t, "123456789", p.Liquidity.String())
	assert.Equal(t, "4", p.TokensOwed1.String())
	assert.Equal(t, manager, *fc.msgs["positions"].To)
}

func TestReader_NftPosition_Revert(t *testing.T) {
	fc := newFakeCaller(t)
	fc.errs["positions"] = errors.New("execution reverted: Invalid token ID")

	_, err := NewReader(fc, manager).NftPosition(context.Background(), big.NewInt(1))
	require.Error(t, err)
}

func TestReader_PoolViaFactory(t *testing.T) {
	fc := newFakeCaller(t)
	fc.set(&V3_MANAGER, "factory", factory)
	fc.set(&V3_FACTORY, "getPool", pool)

	r := NewReader(fc, manager)
	p, err := r.Pool(context.Background(), weth, usdc, big.NewInt(500))
	require.NoError(t, err)
	assert.Equal(t, pool, p)
	assert.Equal(t, factory, *fc.msgs["getPool"].To)

	// cached
	delete(fc.outputs, "factory")
	f, err := r.Factory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, factory, f)
}

func TestReader_PoolMissing(t *testing.T) {
	fc := newFakeCaller(t)
	fc.set(&V3_MANAGER, "factory", factory)
	fc.set(&V3_FACTORY, "getPool", common.Address{})

	_, err := NewReader(fc, manager).Pool(context.Background(), weth, usdc, big.NewInt(3000))
	assert.ErrorIs(t, err, cmn.ErrTerminal)
}

func TestReader_Slot0(t *testing.T) {
	sqrt, err := SqrtPriceX96FromTick(-198000)
	require.NoError(t, err)

	fc := newFakeCaller(t)
	fc.set(&V3_POOL, "slot0", sqrt, big.NewInt(-198000), uint16(1), uint16(2), uint16(3), uint8(0), true)

	s, err := NewReader(fc, manager).Slot0(context.Background(), pool)
	require.NoError(t, err)
	assert.Equal(t, sqrt.String(), s.SqrtPriceX96.Dec())
	assert.Equal(t, int64(-198000), s.Tick)
	assert.True(t, s.Unlocked)
}

func TestReader_SimulateCollect(t *testing.T) {
	fc := newFakeCaller(t)
	fc.set(&V3_MANAGER, "collect", big.NewInt(1500000000000000), big.NewInt(4200000))

	a0, a1, err := NewReader(fc, manager).SimulateCollect(context.Background(), big.NewInt(7), owner)
	require.NoError(t, err)
	assert.Equal(t, "1500000000000000", a0.String())
	assert.Equal(t, "4200000", a1.String())

	msg := fc.msgs["collect"]
	assert.Equal(t, owner, msg.From)

	args, err := V3_MANAGER.Methods["collect"].Inputs.Unpack(msg.Data[4:])
	require.NoError(t, err)
	require.Len(t, args, 1)
	params := abi.ConvertType(args[0], new(collectParams)).(*collectParams)
	assert.Equal(t, "7", params.TokenId.String())
	assert.Equal(t, owner, params.Recipient)
	assert.Equal(t, 0, params.Amount0Max.Cmp(MAX_UINT128))
}

func TestReader_PositionStatus(t *testing.T) {
	zero := big.NewInt(0)
	fc := newFakeCaller(t)
	fc.set(&V3_POOL, "feeGrowthGlobal0X128", new(big.Int).Mul(Q128, big.NewInt(2)))
	fc.set(&V3_POOL, "feeGrowthGlobal1X128", Q128)
	fc.set(&V3_POOL, "ticks", big.NewInt(1), big.NewInt(1), zero, zero, zero, zero, uint32(0), true)

	sqrt, err := SqrtPriceX96FromTick(0)
	require.NoError(t, err)
	fc.set(&V3_POOL, "slot0", sqrt, big.NewInt(0), uint16(0), uint16(0), uint16(0), uint8(0), true)

	r := NewReader(fc, manager)
	s0, err := r.Slot0(context.Background(), pool)
	require.NoError(t, err)

	pos := &NftPosition{
		Id: big.NewInt(1), TickLower: -60, TickUpper: 60, Liquidity: big.NewInt(10),
		FeeGrowthInside0LastX128: zero, FeeGrowthInside1LastX128: zero,
		TokensOwed0: zero, TokensOwed1: big.NewInt(1),
	}

	st, err := r.PositionStatus(context.Background(), pos, pool, s0)
	require.NoError(t, err)
	assert.True(t, st.InRange)
	assert.Equal(t, "20", st.Fees0.String())
	assert.Equal(t, "11", st.Fees1.String())
}
